package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/meshcore-dev/companion-ui/internal/config"
	"github.com/meshcore-dev/companion-ui/internal/prefs"
	"github.com/meshcore-dev/companion-ui/internal/scenario"
	"github.com/meshcore-dev/companion-ui/internal/tui"
	"github.com/meshcore-dev/companion-ui/internal/version"
)

//nolint:gochecknoglobals // Cobra requires package-level vars for flag bindings in current structure.
var (
	// Used for flags.
	configFile string
	prefsFile  = prefs.DefaultPath
	verbose    bool
	jsonOutput bool

	radioFreq float64
	radioBW   float64
	radioSF   uint8
	radioCR   uint8
	radioTx   int8

	// cfg is loaded once by the root command before any subcommand runs.
	cfg = config.Default()

	rootCmd = &cobra.Command{
		Use:   "companion-ui",
		Short: "Simulator and tooling for the companion radio's on-device user interface.",
		Long:  "companion-ui runs the handheld mesh radio's screen controller against simulated hardware, either interactively in the terminal or as a headless scenario replay.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configFile)
			if err != nil {
				return err
			}
			cfg = loaded
			logrus.SetLevel(cfg.LogLevel())
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
	}
)

//nolint:gochecknoinits // Cobra command wiring performed in init in current structure.
func init() {
	// Route logs to stderr to avoid polluting stdout, especially for --json output.
	logrus.SetOutput(os.Stderr)

	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&prefsFile, "prefs", prefsFile, "Node preferences file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable detailed logging output")

	replayCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the replay report as JSON")

	prefsSetRadioCmd.Flags().Float64Var(&radioFreq, "freq", 0, "Frequency in MHz")
	prefsSetRadioCmd.Flags().Float64Var(&radioBW, "bw", 0, "Bandwidth in kHz")
	prefsSetRadioCmd.Flags().Uint8Var(&radioSF, "sf", 0, "Spreading factor")
	prefsSetRadioCmd.Flags().Uint8Var(&radioCR, "cr", 0, "Coding rate")
	prefsSetRadioCmd.Flags().Int8Var(&radioTx, "tx", 0, "Transmit power in dBm")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(prefsCmd)

	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsSetNameCmd)
	prefsCmd.AddCommand(prefsSetRadioCmd)

	// Built-in version flag: set version string and a custom template.
	rootCmd.Version = version.BuildVersion
	rootCmd.Annotations = map[string]string{"commit": version.BuildCommit, "date": version.BuildDate}
	rootCmd.SetVersionTemplate("{{printf \"%s %s\\ncommit: %s\\ndate: %s\\n\" .DisplayName .Version (index .Annotations \"commit\") (index .Annotations \"date\")}}")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func main() {
	Execute()
}

// loadScenario reads the scenario named by args, or returns the default session.
func loadScenario(args []string) (scenario.Scenario, error) {
	if len(args) == 0 {
		return scenario.Default(), nil
	}
	return scenario.Load(args[0])
}

// openPrefs opens the preferences file, creating it with factory settings.
func openPrefs() *prefs.Store {
	st, err := prefs.NewOrExistingStore(prefsFile)
	if err != nil {
		logrus.Fatalf("Unable to open or create prefs: %v", err)
	}
	return st
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var runCmd = &cobra.Command{
	Use:   "run [SCENARIO]",
	Short: "Run the interactive terminal simulator",
	Long:  "Start a simulated device in the terminal. F1-F4 press the user button; other keys go to the keypad. A scenario file seeds the node; its scripted steps are ignored.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sc, err := loadScenario(args)
		if err != nil {
			logrus.Fatal(err)
		}
		st := openPrefs()
		dev, err := scenario.NewDevice(sc, cfg, st.Data, version.BuildVersion, version.BuildDate)
		if err != nil {
			logrus.Fatal(err)
		}

		if cfg.Log.File != "" {
			f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
			if err != nil {
				logrus.Fatalf("Unable to open log file: %v", err)
			}
			defer f.Close()
			logrus.SetOutput(f)
		}

		title := fmt.Sprintf("companion-ui %s  %s  (%s)", version.Short(version.BuildVersion), dev.Prefs.NodeName, sc.Name)
		if err := tui.Run(cmd.Context(), dev, title); err != nil {
			logrus.Fatalf("Simulator failed: %v", err)
		}
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var replayCmd = &cobra.Command{
	Use:   "replay SCENARIO",
	Short: "Replay a scenario headless and print the final frame",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sc, err := scenario.Load(args[0])
		if err != nil {
			logrus.Fatal(err)
		}
		st := openPrefs()
		res, err := scenario.Replay(cmd.Context(), sc, cfg, st.Data)
		if err != nil {
			logrus.Fatal(err)
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				logrus.Fatal(err)
			}
			return
		}
		printReplay(os.Stdout, res)
	},
}

func printReplay(w io.Writer, res scenario.Result) {
	screen := res.Screen
	if res.HomePage != "" {
		screen += "/" + res.HomePage
	}
	fmt.Fprintf(w, "scenario: %s\n", res.Scenario)
	fmt.Fprintf(w, "ended at: %dms  screen: %s  unread: %d  display: %s\n", res.EndedAt, screen, res.Unread, onOff(res.DisplayOn))
	if res.Halted {
		fmt.Fprintln(w, "device shut down")
	}

	lines := strings.Split(res.Frame, "\n")
	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l)))
	}
	border := "+" + strings.Repeat("-", width) + "+"
	fmt.Fprintln(w, border)
	for _, l := range lines {
		fmt.Fprintf(w, "|%s|\n", l)
	}
	fmt.Fprintln(w, border)

	if len(res.Alerts) > 0 {
		fmt.Fprintln(w, "alerts:")
		for _, a := range res.Alerts {
			fmt.Fprintf(w, "  %6dms  %s\n", a.At, a.Text)
		}
	}
	if len(res.Sent) > 0 {
		fmt.Fprintln(w, "sent:")
		for _, s := range res.Sent {
			fmt.Fprintf(w, "  %-12s %-7s %q\n", s.To, s.Result, s.Text)
		}
	}
	if len(res.Melodies) > 0 {
		fmt.Fprintf(w, "melodies: %s\n", strings.Join(res.Melodies, ", "))
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var scenariosCmd = &cobra.Command{
	Use:   "scenarios [DIR]",
	Short: "List the scenario files found under DIR [Defaults to the current directory]",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		entries, errs := scenario.LoadAll(cmd.Context(), root)
		for path, err := range errs {
			logrus.Warnf("Skipping %s: %v", path, err)
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stdout, "No scenarios found")
			return
		}
		for _, e := range entries {
			fmt.Fprintf(os.Stdout, "%s\t%s\t%d steps\t%s\n", e.Path, e.Scenario.Name, len(e.Scenario.Steps), e.Scenario.Description)
		}
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage the node preferences shown on the device",
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the node preferences as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		st := openPrefs()
		data, err := json.MarshalIndent(st.Data, "", "  ")
		if err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintf(os.Stdout, "%s\n", data)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var prefsSetNameCmd = &cobra.Command{
	Use:   "set-name NAME",
	Short: "Set the node name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openPrefs()
		if err := st.SetNodeName(args[0]); err != nil {
			logrus.Fatal(err)
		}
		if err := st.Save(); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintf(os.Stdout, "Node name set to %s\n", st.Data.NodeName)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var prefsSetRadioCmd = &cobra.Command{
	Use:   "set-radio",
	Short: "Set the radio parameters; flags left out keep their current value",
	Run: func(cmd *cobra.Command, args []string) {
		st := openPrefs()
		d := st.Data
		flags := cmd.Flags()
		if flags.Changed("freq") {
			d.Freq = radioFreq
		}
		if flags.Changed("bw") {
			d.BW = radioBW
		}
		if flags.Changed("sf") {
			d.SF = radioSF
		}
		if flags.Changed("cr") {
			d.CR = radioCR
		}
		if flags.Changed("tx") {
			d.TxPowerDBm = radioTx
		}
		if err := st.SetRadio(d.Freq, d.BW, d.SF, d.CR, d.TxPowerDBm); err != nil {
			logrus.Fatal(err)
		}
		if err := st.Save(); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintf(os.Stdout, "Radio set to %.3f MHz, BW %.2f kHz, SF %d, CR %d, %d dBm\n", d.Freq, d.BW, d.SF, d.CR, d.TxPowerDBm)
	},
}
