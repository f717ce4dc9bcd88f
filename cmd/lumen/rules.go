package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"a11y-hq/lumen/pkg/catalog"
	"a11y-hq/lumen/pkg/cli"
	"a11y-hq/lumen/pkg/rule"
)

var rulesFlags struct {
	origin string
	format string
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the active rule catalog",
	Long: `Inspect the rules that scans evaluate: the built-in library plus any
configured rule packs, minus disabled rules.

Subcommands:
  list  - List active rules
  show  - Show one rule in detail

Examples:
  # List all rules
  lumen rules list

  # List only rules from packs, as JSON
  lumen rules list --origin pack --format json

  # Show a rule's condition and guidance
  lumen rules show NameNotNull`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active rules",
	Args:  cobra.NoArgs,
	RunE:  listRules,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show RULE_ID",
	Short: "Show one rule",
	Args:  cobra.ExactArgs(1),
	RunE:  showRule,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesShowCmd)

	rulesCmd.PersistentFlags().StringVarP(&rulesFlags.format, "format", "f", "text", "output format: text, json, csv")
	rulesListCmd.Flags().StringVar(&rulesFlags.origin, "origin", "", "filter by origin: builtin, pack")
}

func listRules(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(rulesFlags.format)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	manager, err := a.loadCatalog(commandContext(cmd))
	if err != nil {
		return cli.NewCommandError("rules list", err)
	}
	defer manager.Close()

	set := manager.Snapshot()
	if rulesFlags.origin != "" {
		set = set.Filter(func(e catalog.Entry) bool { return e.Origin == rulesFlags.origin })
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), cli.RuleTable(set.Entries()))
}

func showRule(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(rulesFlags.format)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	manager, err := a.loadCatalog(commandContext(cmd))
	if err != nil {
		return cli.NewCommandError("rules show", err)
	}
	defer manager.Close()

	entry, ok := manager.Snapshot().Entry(args[0])
	if !ok {
		return fmt.Errorf("rule %q not found", args[0])
	}

	if format == cli.FormatCSV {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), cli.RuleTable{entry})
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), ruleDetail(entry))
}

// ruleDetail renders one rule with all of its metadata.
type ruleDetail catalog.Entry

func (d ruleDetail) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		rule.Info
		Origin string `json:"origin"`
		File   string `json:"file,omitempty"`
	}{d.Rule.Info(), d.Origin, d.File})
}

func (d ruleDetail) RenderText(w io.Writer) error {
	info := d.Rule.Info()
	origin := d.Origin
	if d.File != "" {
		origin = fmt.Sprintf("%s (%s)", d.Origin, d.File)
	}

	fmt.Fprintf(w, "%s\n", info.ID)
	fmt.Fprintf(w, "  Origin:      %s\n", origin)
	fmt.Fprintf(w, "  Description: %s\n", info.Description)
	if info.HowToFix != "" {
		fmt.Fprintf(w, "  How to fix:  %s\n", info.HowToFix)
	}
	if info.Standard != "" {
		fmt.Fprintf(w, "  Standard:    %s\n", info.Standard)
	}
	if info.PropertyID != "" {
		fmt.Fprintf(w, "  Property:    %s\n", info.PropertyID)
	}
	if info.FailureCode.Valid() {
		fmt.Fprintf(w, "  Failure:     %s\n", info.FailureCode)
	}
	fmt.Fprintf(w, "  Condition:   %s\n", info.Condition)
	fmt.Fprintf(w, "  Fingerprint: %s\n", info.ConditionFingerprint)
	return nil
}
