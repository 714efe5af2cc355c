package main

import (
	"fmt"
	"os"

	"bds-go/internal/app"
	"bds-go/internal/config"
	"bds-go/internal/estate"
	"bds-go/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "AddRecord", "BackupNow").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase prompts twice when confirm is set and checks the entries match.
func readPassphrase(confirm bool) (string, error) {
	fmt.Print("Passphrase: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}

	if confirm {
		fmt.Print("Confirm passphrase: ")
		second, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		if string(first) != string(second) {
			return "", fmt.Errorf("passphrases do not match")
		}
	}

	return string(first), nil
}

// listingInputFromFlags builds a ListingInput from the record field flags.
func listingInputFromFlags(cmd *cobra.Command) estate.ListingInput {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return estate.ListingInput{
		Category: get("category"),
		Project:  get("project"),
		Price:    get("price"),
		Area:     get("area"),
		Phone:    get("phone"),
		Profit:   get("profit"),
		Notice:   get("notice"),
		Status:   get("status"),
	}
}

func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().String("category", "", "Listing category (e.g. apartment, land)")
	cmd.Flags().String("project", "", "Project or development name")
	cmd.Flags().String("price", "", "Asking price")
	cmd.Flags().String("area", "", "Floor area in square meters")
	cmd.Flags().String("phone", "", "Contact phone number")
	cmd.Flags().String("profit", "", "Expected profit note")
	cmd.Flags().String("notice", "", "Free-form notes")
	cmd.Flags().String("status", model.StatusAvailable, "Listing status (available or sold-out)")
}

var rootCmd = &cobra.Command{
	Use:   "bds",
	Short: "Real estate listing manager",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:     %s\n", cfg.HostID)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Data File:   %s\n", cfg.DataFile)
		fmt.Printf("Assets Dir:  %s\n", cfg.AssetsDir)
		fmt.Printf("Share Dir:   %s\n", cfg.ShareDir)
		fmt.Printf("Backup Dir:  %s\n", cfg.BackupDir)
		fmt.Printf("Auto Backup: every %d day(s)\n", cfg.AutoBackupDays)
		fmt.Printf("Vaults:      %d configured\n", len(cfg.Vaults))
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetupKeys")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase(true)
		if err != nil {
			return err
		}

		if err := a.SetupKeys(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Println("Key pair generated.")
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a listing",
	RunE: func(cmd *cobra.Command, args []string) error {
		images, _ := cmd.Flags().GetStringArray("image")

		a, err := newApp("AddRecord")
		if err != nil {
			return err
		}
		defer a.Close()

		l, err := a.AddRecord(listingInputFromFlags(cmd), images)
		if err != nil {
			return fmt.Errorf("adding record: %w", err)
		}

		fmt.Printf("Added %s\n", l.ID)
		fmt.Printf("Images folder: %s\n", l.FolderPath)
		return nil
	},
}

// edit command
var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		images, _ := cmd.Flags().GetStringArray("image")

		a, err := newApp("UpdateRecord")
		if err != nil {
			return err
		}
		defer a.Close()

		current, err := a.GetRecord(args[0])
		if err != nil {
			return err
		}

		// Start from the stored record so unspecified flags keep their
		// current values.
		in := estate.ListingInput{
			Category: current.Category,
			Project:  current.Project,
			Price:    formatFloat(current.Price),
			Phone:    current.Phone,
			Profit:   current.Profit,
			Notice:   current.Notice,
			Status:   current.Status,
		}
		if current.HasArea() {
			in.Area = formatFloat(*current.Area)
		}

		flags := listingInputFromFlags(cmd)
		if cmd.Flags().Changed("category") {
			in.Category = flags.Category
		}
		if cmd.Flags().Changed("project") {
			in.Project = flags.Project
		}
		if cmd.Flags().Changed("price") {
			in.Price = flags.Price
		}
		if cmd.Flags().Changed("area") {
			in.Area = flags.Area
		}
		if cmd.Flags().Changed("phone") {
			in.Phone = flags.Phone
		}
		if cmd.Flags().Changed("profit") {
			in.Profit = flags.Profit
		}
		if cmd.Flags().Changed("notice") {
			in.Notice = flags.Notice
		}
		if cmd.Flags().Changed("status") {
			in.Status = flags.Status
		}

		l, err := a.UpdateRecord(args[0], in, images)
		if err != nil {
			return fmt.Errorf("updating record: %w", err)
		}

		fmt.Printf("Updated %s\n", l.ID)
		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a listing and its images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteRecord")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteRecord(args[0]); err != nil {
			return fmt.Errorf("deleting record: %w", err)
		}

		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List and search listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		get := func(name string) string {
			v, _ := cmd.Flags().GetString(name)
			return v
		}
		criteria := estate.Criteria{
			Category: get("category"),
			Project:  get("project"),
			PriceMin: get("price-min"),
			PriceMax: get("price-max"),
			AreaMin:  get("area-min"),
			AreaMax:  get("area-max"),
			Status:   get("status"),
		}

		a, err := newApp("SearchRecords")
		if err != nil {
			return err
		}
		defer a.Close()

		results, err := a.SearchRecords(criteria)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No listings found.")
			return nil
		}

		printListings(cmd.OutOrStdout(), results)
		return nil
	},
}

// images command
var imagesCmd = &cobra.Command{
	Use:   "images ID",
	Short: "List the images stored for a listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListRecordImages")
		if err != nil {
			return err
		}
		defer a.Close()

		images, skipped, err := a.ListRecordImages(args[0])
		if err != nil {
			return err
		}

		if len(images) == 0 {
			fmt.Println("No images.")
		}
		for _, img := range images {
			fmt.Printf("%s  %s  %dx%d\n", img.Name, img.Format, img.Width, img.Height)
		}
		if skipped > 0 {
			fmt.Printf("Skipped %d unreadable file(s)\n", skipped)
		}
		return nil
	},
}

// share command
var shareCmd = &cobra.Command{
	Use:   "share ID",
	Short: "Export a listing summary and its images for sharing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ShareRecord")
		if err != nil {
			return err
		}
		defer a.Close()

		dest, err := a.ShareRecord(args[0])
		if err != nil {
			return fmt.Errorf("sharing record: %w", err)
		}

		fmt.Printf("Shared to %s\n", dest)
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a snapshot of the table and images",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("BackupNow")
		if err != nil {
			return err
		}
		defer a.Close()

		pair, err := a.BackupNow()
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		fmt.Printf("Backup %s written:\n  %s\n  %s\n", pair.Stamp, pair.TablePath, pair.ArchivePath)
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore TABLE ARCHIVE",
	Short: "Restore the table and images from a snapshot pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Print("This replaces the entire table and image tree. Continue? [y/N] ")
			var answer string
			fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		a, err := newApp("Restore")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Restore(args[0], args[1]); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		fmt.Println("Restore complete.")
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the table or the images archive to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		tablePath, _ := cmd.Flags().GetString("table")
		imagesPath, _ := cmd.Flags().GetString("images")
		if tablePath == "" && imagesPath == "" {
			return fmt.Errorf("nothing to export: pass --table and/or --images")
		}

		a, err := newApp("Export")
		if err != nil {
			return err
		}
		defer a.Close()

		if tablePath != "" {
			f, err := os.Create(tablePath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", tablePath, err)
			}
			if err := a.ExportTable(f); err != nil {
				f.Close()
				return fmt.Errorf("exporting table: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", tablePath, err)
			}
			fmt.Printf("Table exported to %s\n", tablePath)
		}

		if imagesPath != "" {
			f, err := os.Create(imagesPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", imagesPath, err)
			}
			if err := a.ExportImagesArchive(f); err != nil {
				f.Close()
				return fmt.Errorf("exporting images: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", imagesPath, err)
			}
			fmt.Printf("Images archive exported to %s\n", imagesPath)
		}

		return nil
	},
}

// vault command
var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage offsite snapshot copies",
}

var vaultPullCmd = &cobra.Command{
	Use:   "pull STAMP",
	Short: "Download a snapshot pair from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypted, _ := cmd.Flags().GetBool("encrypted")

		a, err := newApp("VaultPull")
		if err != nil {
			return err
		}
		defer a.Close()

		var passphrase string
		if encrypted {
			passphrase, err = readPassphrase(false)
			if err != nil {
				return err
			}
		}

		paths, err := a.VaultPull(args[0], passphrase)
		if err != nil {
			return fmt.Errorf("pulling snapshot %s: %w", args[0], err)
		}

		for _, p := range paths {
			fmt.Printf("Pulled %s\n", p)
		}
		return nil
	},
}

var vaultVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that configured vaults are reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("VaultVerify")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.VaultVerify(); err != nil {
			return fmt.Errorf("vault verification failed: %w", err)
		}

		fmt.Println("All vaults reachable.")
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// vault subcommands
	vaultCmd.AddCommand(vaultPullCmd)
	vaultCmd.AddCommand(vaultVerifyCmd)
	vaultPullCmd.Flags().Bool("encrypted", false, "Vault copies are encrypted; prompt for the key passphrase")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(addCmd)
	addRecordFlags(addCmd)
	addCmd.Flags().StringArray("image", nil, "Image file to attach (repeatable)")
	rootCmd.AddCommand(editCmd)
	addRecordFlags(editCmd)
	editCmd.Flags().StringArray("image", nil, "Replacement image file (repeatable, replaces all images)")
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("category", "", "Filter by category substring")
	listCmd.Flags().String("project", "", "Filter by project substring")
	listCmd.Flags().String("price-min", "", "Minimum price (inclusive)")
	listCmd.Flags().String("price-max", "", "Maximum price (inclusive)")
	listCmd.Flags().String("area-min", "", "Minimum area (inclusive)")
	listCmd.Flags().String("area-max", "", "Maximum area (inclusive)")
	listCmd.Flags().String("status", "", "Filter by exact status")
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("table", "", "Write the table CSV to this path")
	exportCmd.Flags().String("images", "", "Write the images zip to this path")
	rootCmd.AddCommand(vaultCmd)
}
