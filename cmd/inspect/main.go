package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Mirrors the /stats.json payload of the server's debug inspector.
type payload struct {
	Stats struct {
		Connected int      `json:"connected"`
		Users     []string `json:"users"`
		Groups    []struct {
			Name    string   `json:"name"`
			Owner   string   `json:"owner"`
			Members []string `json:"members"`
		} `json:"groups"`
	} `json:"stats"`
	Messages []struct {
		Scope     string    `json:"Scope"`
		SenderID  string    `json:"SenderID"`
		Content   string    `json:"Content"`
		CreatedAt time.Time `json:"CreatedAt"`
	} `json:"messages"`
}

func main() {
	url := flag.String("url", "http://localhost:8080/stats.json", "Debug server stats endpoint")
	limit := flag.Int("limit", 20, "Number of recent messages to fetch")
	flag.Parse()

	resp, err := http.Get(fmt.Sprintf("%s?limit=%d", *url, *limit))
	if err != nil {
		log.Fatal("Error while querying debug server: ", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Debug server answered %s", resp.Status)
	}

	var data payload
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		log.Fatal("Error while decoding stats: ", err)
	}

	fmt.Printf("Connected (%d): %s\n\n", data.Stats.Connected, strings.Join(data.Stats.Users, " "))

	groups := newTable()
	groups.SetHeader([]string{"Group", "Owner", "Members"})
	for _, g := range data.Stats.Groups {
		groups.Append([]string{g.Name, g.Owner, strings.Join(g.Members, " ")})
	}
	groups.Render()
	fmt.Println()

	messages := newTable()
	messages.SetHeader([]string{"At", "Scope", "Sender", "Content"})
	for _, m := range data.Messages {
		messages.Append([]string{
			m.CreatedAt.Local().Format("15:04:05"),
			m.Scope,
			m.SenderID,
			m.Content,
		})
	}
	messages.Render()
}

func newTable() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
