package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qhosting/smsegment/internal/types"
)

var contactsFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Seed a company's contacts from a JSON file",
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&contactsFile, "contacts", "", "contacts JSON file (array of contact records)")
	importCmd.Flags().StringVar(&companyID, "company", "", "company ID to import into")
	importCmd.MarkFlagRequired("contacts")
	importCmd.MarkFlagRequired("company")
}

func runImport(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	raw, err := os.ReadFile(contactsFile)
	if err != nil {
		return fmt.Errorf("failed to read contacts file: %w", err)
	}

	var contacts []types.Contact
	if err := json.Unmarshal(raw, &contacts); err != nil {
		return fmt.Errorf("failed to decode contacts: %w", err)
	}

	ctx := context.Background()
	now := time.Now().UTC()

	for i := range contacts {
		c := &contacts[i]

		// Records without an ID get a generated one; provided IDs must be
		// well-formed so the membership tables stay queryable by UUID
		if c.ID == "" {
			c.ID = types.NewContactID()
		} else if _, err := types.ParseContactID(string(c.ID)); err != nil {
			return fmt.Errorf("contact %d: invalid ID %q: %w", i, c.ID, err)
		}

		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}

		if err := e.contacts.Insert(ctx, companyID, c); err != nil {
			return fmt.Errorf("contact %d (%s): %w", i, c.Phone, err)
		}
	}

	e.log.Info("imported contacts",
		zap.String("company_id", companyID),
		zap.Int("contacts", len(contacts)))
	fmt.Printf("imported %d contacts\n", len(contacts))

	return nil
}
