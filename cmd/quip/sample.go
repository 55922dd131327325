package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ngoyal88/quip/pkg/humor"
	"github.com/ngoyal88/quip/pkg/intercept"
)

var (
	testLevel string
	testLocal bool
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Annotate a built-in set of sample logs and print the status snapshot",
	RunE:  runSamples,
}

func init() {
	testCmd.Flags().StringVar(&testLevel, "level", "", "humor level for the run (mild, medium, savage)")
	testCmd.Flags().BoolVar(&testLocal, "local", false, "never call the remote provider")
}

type sampleUser struct {
	ID    int       `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Seen  time.Time `json:"seen"`
}

func samples() [][]any {
	return [][]any{
		{"Server started on port", 8080},
		{"Error: database connection refused"},
		{"User saved successfully", sampleUser{ID: 42, Name: "ada", Email: "ada@example.com", Seen: time.Now()}},
		{errors.New("panic: runtime error: index out of range [3] with length 3")},
		{"Fetched", []int{1, 2, 3}, "items from https://api.example.com/v1/items"},
		{"login attempt password=hunter2 from 10.0.0.12"},
		{"TODO: refactor this hack before the deploy"},
		{"All 128 tests passed, great work"},
		{map[string]any{"status": "degraded", "latency_ms": 1234, "nested": map[string]any{"a": []any{1, "two", nil}}}},
		{"ugh, this is broken again"},
	}
}

func runSamples(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if testLevel != "" {
		if _, err := humor.ParseLevel(testLevel); err != nil {
			return err
		}
		cfg.Humor.Level = testLevel
	}
	if testLocal {
		cfg.Remote.PreferLocal = true
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printer := intercept.WriterPrinter(out)
	hook := intercept.New(&printer, a.engine, intercept.Options{Enabled: true, Frequency: 100},
		intercept.WithLogger(component("intercept")),
		intercept.WithContext(cmd.Context()),
	)
	hook.Install()
	defer hook.Uninstall()

	for _, values := range samples() {
		printer(values...)
		// Keep each annotation next to its line.
		hook.Wait()
	}

	status, err := json.MarshalIndent(a.engine.Status(cmd.Context()), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nstatus:\n%s\n", status)
	return a.close()
}
