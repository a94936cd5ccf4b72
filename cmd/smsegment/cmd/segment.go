package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qhosting/smsegment/internal/segment"
	"github.com/qhosting/smsegment/internal/types"
)

var (
	criteriaFile string
	companyID    string
	listID       string
	listName     string
	listDesc     string
	dynamicList  bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Evaluate criteria against a contact collection and print summary statistics",
	RunE:  runPreview,
}

var materializeCmd = &cobra.Command{
	Use:   "materialize",
	Short: "Filter a company's contacts and persist the result as a list",
	RunE:  runMaterialize,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-run a dynamic list's stored criteria and replace its membership",
	RunE:  runRefresh,
}

func init() {
	rootCmd.AddCommand(previewCmd, materializeCmd, refreshCmd)

	previewCmd.Flags().StringVar(&criteriaFile, "criteria", "", "criteria JSON file")
	previewCmd.Flags().StringVar(&companyID, "company", "", "company ID whose contacts to filter")
	previewCmd.Flags().StringVar(&listID, "list", "", "restrict the base population to one list")
	previewCmd.MarkFlagRequired("criteria")
	previewCmd.MarkFlagRequired("company")

	materializeCmd.Flags().StringVar(&criteriaFile, "criteria", "", "criteria JSON file")
	materializeCmd.Flags().StringVar(&companyID, "company", "", "company ID whose contacts to filter")
	materializeCmd.Flags().StringVar(&listName, "name", "", "name of the new list")
	materializeCmd.Flags().StringVar(&listDesc, "description", "", "description of the new list")
	materializeCmd.Flags().BoolVar(&dynamicList, "dynamic", false, "keep criteria attached for later refreshes")
	materializeCmd.MarkFlagRequired("criteria")
	materializeCmd.MarkFlagRequired("company")
	materializeCmd.MarkFlagRequired("name")

	refreshCmd.Flags().StringVar(&listID, "list", "", "list ID to refresh")
	refreshCmd.MarkFlagRequired("list")
}

// loadCriteria decodes a criteria JSON file in the persisted wire format.
func loadCriteria(path string) (*types.Criteria, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read criteria file: %w", err)
	}
	var criteria types.Criteria
	if err := json.Unmarshal(raw, &criteria); err != nil {
		return nil, fmt.Errorf("failed to decode criteria: %w", err)
	}
	return &criteria, nil
}

func printSummary(s segment.Summary) {
	fmt.Printf("base population: %d\n", s.Total)
	fmt.Printf("matched:         %d (%d%%)\n", s.Matched, s.MatchPercentage)
	for _, c := range s.Preview {
		fmt.Printf("  %s  %s\n", c.Phone, c.ID)
	}
}

func runPreview(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	criteria, err := loadCriteria(criteriaFile)
	if err != nil {
		return err
	}
	if err := segment.Validate(criteria); err != nil {
		return fmt.Errorf("invalid criteria: %w", err)
	}

	ctx := context.Background()

	var contacts []types.Contact
	if listID != "" {
		id, err := types.ParseListID(listID)
		if err != nil {
			return fmt.Errorf("invalid list ID: %w", err)
		}
		contacts, err = e.contacts.ByList(ctx, id, e.cfg.ContactLimit)
		if err != nil {
			return err
		}
	} else {
		contacts, err = e.contacts.ByCompany(ctx, companyID, e.cfg.ContactLimit)
		if err != nil {
			return err
		}
	}

	engine := segment.NewEngine()
	_, summary := engine.Filter(contacts, criteria, e.cfg.PreviewSize)
	printSummary(summary)

	return nil
}

func runMaterialize(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	criteria, err := loadCriteria(criteriaFile)
	if err != nil {
		return err
	}

	ctx := context.Background()

	engine := segment.NewEngine()
	id, summary, err := e.lists.Materialize(ctx, engine, e.contacts,
		companyID, listName, listDesc, criteria, dynamicList,
		e.cfg.ContactLimit, e.cfg.PreviewSize)
	if err != nil {
		return err
	}

	members, err := e.lists.MemberCount(ctx, id)
	if err != nil {
		return err
	}

	e.log.Info("materialized list", zap.String("list_id", string(id)), zap.Int("members", members))
	fmt.Printf("list: %s\n", id)
	printSummary(summary)
	fmt.Printf("persisted members: %d\n", members)

	return nil
}

func runRefresh(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	id, err := types.ParseListID(listID)
	if err != nil {
		return fmt.Errorf("invalid list ID: %w", err)
	}

	ctx := context.Background()

	engine := segment.NewEngine()
	summary, err := e.lists.Refresh(ctx, engine, e.contacts, id,
		e.cfg.ContactLimit, e.cfg.PreviewSize)
	if err != nil {
		return err
	}

	members, err := e.lists.MemberCount(ctx, id)
	if err != nil {
		return err
	}

	printSummary(summary)
	fmt.Printf("persisted members: %d\n", members)
	return nil
}
