package wi

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/hallowell/workitem/internal/config"
	"github.com/hallowell/workitem/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new work-item project",
	Long:  `Creates the local .workitem directory and writes its config.json, prompting interactively unless --no-input is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir, err := getBaseDir()
		if err != nil {
			return err
		}

		if _, err := os.Stat(filepath.Join(baseDir, ".workitem")); err == nil {
			output.Warning(".workitem/ already exists")
			return nil
		}

		cfg := config.Default(baseDir)
		if flagDriver != "" {
			cfg.Driver = flagDriver
		}
		if flagDBHost != "" {
			cfg.Host = flagDBHost
		}
		if flagDBPort != 0 {
			cfg.Port = flagDBPort
		}
		if flagDBUser != "" {
			cfg.User = flagDBUser
		}
		if flagDBPassword != "" {
			cfg.Password = flagDBPassword
		}
		if flagDBName != "" {
			cfg.Database = flagDBName
		}

		noInput, _ := cmd.Flags().GetBool("no-input")
		if !noInput {
			if err := runInitWizard(&cfg); err != nil {
				return err
			}
		}

		if err := config.Save(baseDir, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println("INITIALIZED .workitem/")
		fmt.Printf("Driver: %s\n", cfg.Driver)
		return nil
	},
}

func runInitWizard(cfg *config.Config) error {
	driverOptions := []huh.Option[string]{
		huh.NewOption("SQLite (local file)", "sqlite"),
		huh.NewOption("MySQL", "mysql"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Storage driver").
				Options(driverOptions...).
				Value(&cfg.Driver),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if cfg.Driver != "mysql" {
		return nil
	}

	mysqlForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Host").
				Value(&cfg.Host).
				Placeholder("127.0.0.1"),
			huh.NewInput().
				Title("Database name").
				Value(&cfg.Database).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("database name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("User").
				Value(&cfg.User),
			huh.NewInput().
				Title("Password").
				Value(&cfg.Password).
				EchoMode(huh.EchoModePassword),
		),
	).WithTheme(huh.ThemeDracula())
	return mysqlForm.Run()
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("no-input", false, "skip the interactive wizard, using flags/defaults only")
}
