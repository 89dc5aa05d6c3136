package backup

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/domain/invitation"
	"github.com/clubkit/clubkit/internal/domain/match"
	"github.com/clubkit/clubkit/internal/domain/player"
	"github.com/clubkit/clubkit/internal/domain/setting"
	"github.com/clubkit/clubkit/internal/domain/user"
)

// Data is the snapshot payload body. Invitations are short-lived
// bookkeeping and are deliberately not part of backups; exports carry them.
type Data struct {
	Users    []user.User       `json:"users"`
	Groups   []group.Group     `json:"groups"`
	Players  []player.Player   `json:"players"`
	Matches  []match.Match     `json:"matches"`
	Settings []setting.Setting `json:"settings"`
}

// Snapshot is a point-in-time, size-bounded copy of the collections.
type Snapshot struct {
	Timestamp     int64 `json:"timestampEpochMillis"`
	SchemaVersion int   `json:"schemaVersion"`
	Data          Data  `json:"data"`
}

func (s Snapshot) encode() ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(s); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func decodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Export is the full dump consumed by an external download mechanism.
// Unlike snapshots it is unbounded and includes invitations.
type Export struct {
	ExportedAt    time.Time               `json:"exportedAt"`
	SchemaVersion int                     `json:"schemaVersion"`
	Data          Data                    `json:"data"`
	Invitations   []invitation.Invitation `json:"invitations"`
}
