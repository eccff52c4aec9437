package natsadapter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samirrijal/tripmap/internal/core/domain"
)

// Stream and subject layout.
const (
	StreamName = "TRIPMAP_EVENTS"

	SubjectAll         = "tripmap.>"
	SubjectDataPrefix  = "tripmap.data."
	SubjectDataAll     = "tripmap.data.>"
	SubjectMapRendered = "tripmap.map.rendered"
)

// DataSubject returns the subject a data change of kind is published on.
func DataSubject(kind domain.DataChange) string {
	return SubjectDataPrefix + string(kind)
}

// dataChangedMessage is the payload of tripmap.data.* messages.
type dataChangedMessage struct {
	Kind      domain.DataChange `json:"kind"`
	ChangedAt time.Time         `json:"changed_at"`
}

func encodeDataChanged(kind domain.DataChange, at time.Time) ([]byte, error) {
	return json.Marshal(dataChangedMessage{Kind: kind, ChangedAt: at.UTC()})
}

// decodeDataChanged reads the change kind, falling back to the subject suffix
// for payloads without one.
func decodeDataChanged(subject string, data []byte) (domain.DataChange, error) {
	var msg dataChangedMessage
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			return "", fmt.Errorf("decode data change: %w", err)
		}
	}
	if msg.Kind == "" {
		msg.Kind = domain.DataChange(strings.TrimPrefix(subject, SubjectDataPrefix))
	}
	switch msg.Kind {
	case domain.ChangeCities, domain.ChangeTrips:
		return msg.Kind, nil
	default:
		return "", fmt.Errorf("unknown data change %q", msg.Kind)
	}
}
