package cmd

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/intern-matcher/internal/matching"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Print the built-in scoring profiles and the effective configuration",
	Run: func(cmd *cobra.Command, _ []string) {
		if err := viper.BindPFlag("profile", cmd.Flags().Lookup("profile")); err != nil {
			log.Fatalf("binding flag profile: %v", err)
		}

		config, err := getConfig()
		if err != nil {
			log.Fatalf("getting a config: %v", err)
		}

		if err := printProfiles(cmd.OutOrStdout(), config); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.Flags().StringP("profile", "p", "", "profile used as the base of the effective configuration")
}

func printProfiles(w io.Writer, config *Config) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tSKILL\tLOCATION\tSECTOR\tQUALIFICATION\tAFFIRMATIVE\tPENALTY\tRESERVED\tTOP")

	for _, name := range matching.ProfileNames() {
		cfg, err := matching.Profile(name)
		if err != nil {
			return err
		}
		printProfile(tw, name, cfg)
	}

	if config != nil {
		effective, err := resolveScoring(config)
		if err != nil {
			return err
		}
		printProfile(tw, "effective", effective)
	}

	return tw.Flush()
}

func printProfile(w io.Writer, name string, cfg matching.Config) {
	reserved := make([]string, 0, len(cfg.ReservedCategories))
	for _, c := range cfg.ReservedCategories {
		reserved = append(reserved, c.String())
	}

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
		name,
		number(cfg.SkillWeight),
		number(cfg.LocationBonus),
		number(cfg.SectorBonus),
		number(cfg.QualificationBonus),
		number(cfg.AffirmativeActionBonus),
		number(cfg.PastParticipationPenalty),
		dash(strings.Join(reserved, ",")),
		cfg.TopN,
	)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
