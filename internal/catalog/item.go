package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
)

// Item is a cached catalog entry. Items are written by the catalog import
// path only; tournaments copy them into participants.
type Item struct {
	ID            int       `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	LocalizedName string    `db:"localized_name" json:"localizedName"`
	Generation    int       `db:"generation" json:"generation"`
	Types         TypeTags  `db:"types" json:"types"`
	ImageURL      string    `db:"image_url" json:"spriteUrl"`
	Description   string    `db:"description" json:"description"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

func (i Item) Participant() worldcup.Participant {
	types := make([]string, len(i.Types))
	copy(types, i.Types)
	return worldcup.Participant{
		ID:            i.ID,
		Name:          i.Name,
		LocalizedName: i.LocalizedName,
		Types:         types,
		ImageURL:      i.ImageURL,
		Description:   i.Description,
		Generation:    i.Generation,
	}
}

// TypeTags is stored as a JSON array in a TEXT column.
type TypeTags []string

func (t TypeTags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *TypeTags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = TypeTags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported type tags column type %T", src)
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return fmt.Errorf("failed to decode type tags: %w", err)
	}
	*t = tags
	return nil
}
