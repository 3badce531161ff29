package schedule

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/boredapes/ctaplanner/pkg/event"
	log "github.com/sirupsen/logrus"
)

var csvHeader = []string{"Time", "Event", "Guild", "Min members", "Date", "Timestamp"}

// RenderCSV renders the grouped view of records, one row per record.
func RenderCSV(records []event.EventRecord) (string, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	if err := writer.Write(csvHeader); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	for slot, group := range GroupedView(records) {
		for _, record := range group {
			team := ""
			if record.Team != nil {
				team = string(*record.Team)
			}
			minMembers := ""
			if record.MinMembers != nil {
				minMembers = strconv.Itoa(*record.MinMembers)
			}
			row := []string{slot, string(record.Category), team, minMembers, record.Date, strconv.FormatInt(record.Timestamp, 10)}
			if err := writer.Write(row); err != nil {
				log.Errorf("Error writing to csv: %v", err)
				return "", err
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
