package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestPassCommandsShareOutputFlags(t *testing.T) {
	want := []string{"diff", "preview", "show-skipped"}

	for _, cmd := range []struct {
		name  string
		flags *pflag.FlagSet
	}{
		{"migrate", migrateCmd.LocalFlags()},
		{"enrich", enrichCmd.LocalFlags()},
	} {
		seen := map[string]bool{}
		cmd.flags.VisitAll(func(flag *pflag.Flag) {
			seen[flag.Name] = true
		})
		for _, name := range want {
			if !seen[name] {
				t.Errorf("%s is missing --%s", cmd.name, name)
			}
		}
	}
}

func TestCommandsNeedVault(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"migrate"}, true},
		{[]string{"enrich"}, true},
		{[]string{"progress", "status"}, true},
		{[]string{"config", "show"}, false},
		{[]string{"version"}, false},
	}
	for _, tt := range tests {
		cmd, _, err := rootCmd.Find(tt.args)
		if err != nil {
			t.Fatalf("Find(%v) error = %v", tt.args, err)
		}
		if got := commandNeedsVault(cmd); got != tt.want {
			t.Errorf("commandNeedsVault(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
