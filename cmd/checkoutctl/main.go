// checkoutctl is the operator CLI for the checkout service: submit a test
// order, watch a payment session until it settles, or cancel one.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "checkoutctl",
		Short:   "Operator CLI for the checkout confirmation service",
		Version: Version,
	}
	rootCmd.PersistentFlags().String("addr", "http://localhost:8081", "checkout service address")

	rootCmd.AddCommand(submitCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(cancelCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type snapshot struct {
	SessionID    string `json:"sessionId"`
	State        string `json:"state"`
	ClientStatus string `json:"clientStatus"`
	AttemptsUsed int    `json:"attemptsUsed"`
	MaxAttempts  int    `json:"maxAttempts"`
	OrderNumber  string `json:"orderNumber"`
	TotalAmount  int64  `json:"totalAmount"`
	Payment      struct {
		QRCodeData    string `json:"qrCodeData"`
		BankCode      string `json:"bankCode"`
		AccountNumber string `json:"accountNumber"`
		AccountName   string `json:"accountName"`
	} `json:"payment"`
	Error string `json:"error"`
}

func submitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a checkout and print the session id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			items, _ := cmd.Flags().GetStringSlice("item")

			body := map[string]any{}
			for _, f := range []string{"name", "phone", "street", "ward", "district", "city", "method"} {
				v, _ := cmd.Flags().GetString(f)
				key := f
				switch f {
				case "name":
					key = "customerName"
				case "method":
					key = "paymentMethod"
				}
				body[key] = v
			}

			parsed := make([]map[string]any, 0, len(items))
			for _, it := range items {
				id, qty, err := parseItem(it)
				if err != nil {
					return err
				}
				parsed = append(parsed, map[string]any{"menuItemId": id, "quantity": qty})
			}
			body["items"] = parsed

			snap, err := post(addr+"/api/checkout", body)
			if err != nil {
				return err
			}
			fmt.Printf("session: %s\norder:   %s\nstate:   %s\n", snap.SessionID, snap.OrderNumber, snap.State)
			if snap.Payment.QRCodeData != "" {
				fmt.Printf("qr:      %s\nbank:    %s %s (%s)\n",
					snap.Payment.QRCodeData, snap.Payment.BankCode,
					snap.Payment.AccountNumber, snap.Payment.AccountName)
			}
			return nil
		},
	}

	cmd.Flags().String("name", "", "customer name")
	cmd.Flags().String("phone", "", "customer phone")
	cmd.Flags().String("street", "", "street address")
	cmd.Flags().String("ward", "", "ward")
	cmd.Flags().String("district", "", "district")
	cmd.Flags().String("city", "", "city")
	cmd.Flags().String("method", "BANK_TRANSFER", "payment method (CASH, BANK_TRANSFER)")
	cmd.Flags().StringSliceP("item", "i", nil, "cart item as menuItemId:quantity (repeatable)")

	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [session-id]",
		Short: "Poll a session snapshot until it reaches a terminal state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			every, _ := cmd.Flags().GetDuration("every")

			for {
				snap, err := get(addr + "/api/checkout/" + args[0])
				if err != nil {
					return err
				}
				fmt.Printf("%s  %s (%d/%d attempts)\n",
					time.Now().Format(time.TimeOnly), snap.State, snap.AttemptsUsed, snap.MaxAttempts)
				if snap.ClientStatus == "confirmed" || snap.ClientStatus == "failed" {
					return nil
				}
				time.Sleep(every)
			}
		},
	}
	cmd.Flags().Duration("every", 2*time.Second, "snapshot interval")
	return cmd
}

func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [session-id]",
		Short: "Cancel a pending payment session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			snap, err := post(addr+"/api/checkout/"+args[0]+"/cancel", nil)
			if err != nil {
				return err
			}
			fmt.Printf("state: %s\n", snap.State)
			return nil
		},
	}
}

func parseItem(s string) (int64, int, error) {
	parts := strings.SplitN(s, ":", 2)
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid item %q: %w", s, err)
	}
	qty := 1
	if len(parts) == 2 {
		qty, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid item %q: %w", s, err)
		}
	}
	return id, qty, nil
}

func post(url string, body any) (*snapshot, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		return nil, err
	}
	return decode(resp)
}

func get(url string) (*snapshot, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	return decode(resp)
}

func decode(resp *http.Response) (*snapshot, error) {
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNoContent {
		return &snapshot{}, nil
	}
	var snap snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		if snap.Error != "" {
			return nil, fmt.Errorf("%s: %s", resp.Status, snap.Error)
		}
		return nil, fmt.Errorf("request failed: %s", resp.Status)
	}
	return &snap, nil
}
