package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const defaultTab = "Matches"

type Client struct {
	service *sheets.Service
}

type Config struct {
	CredentialsPath string
	CredentialsJSON []byte
	// Options are appended after the credentials, e.g. a custom endpoint.
	Options []option.ClientOption
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption

	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	} else if len(cfg.CredentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	} else if len(cfg.Options) == 0 {
		return nil, fmt.Errorf("sheets: credentials path or JSON is required")
	}
	opts = append(opts, cfg.Options...)

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}

	return &Client{service: service}, nil
}

// ReplaceValues clears the tab and writes values starting at A1.
func (c *Client) ReplaceValues(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	if c == nil || c.service == nil {
		return fmt.Errorf("sheets: service is nil")
	}
	if strings.TrimSpace(spreadsheetID) == "" {
		return fmt.Errorf("sheets: spreadsheet id is required")
	}
	if tab = strings.TrimSpace(tab); tab == "" {
		tab = defaultTab
	}

	if err := c.clearValues(ctx, spreadsheetID, tab); err != nil {
		return err
	}
	return c.updateValues(ctx, spreadsheetID, tab+"!A1", values)
}

func (c *Client) updateValues(ctx context.Context, spreadsheetID, cellRange string, values [][]any) error {
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, cellRange, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: update %s: %w", cellRange, err)
	}
	return nil
}

func (c *Client) clearValues(ctx context.Context, spreadsheetID, cellRange string) error {
	_, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, cellRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: clear %s: %w", cellRange, err)
	}
	return nil
}
