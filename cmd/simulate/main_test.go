package main

import "testing"

func TestRootCommandFlags(t *testing.T) {
	if rootCmd.Use != "simulate" {
		t.Errorf("expected command use simulate, got %s", rootCmd.Use)
	}

	if flag := rootCmd.PersistentFlags().Lookup("config"); flag == nil {
		t.Error("expected persistent config flag")
	} else if flag.DefValue != "config/config.yaml" {
		t.Errorf("unexpected config default %s", flag.DefValue)
	}

	for _, name := range []string{"scenario", "output", "quiet"} {
		if rootCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}
