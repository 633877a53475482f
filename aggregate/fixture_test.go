package aggregate_test

import (
	"encoding/json"
	"errors"
	"fmt"

	. "github.com/saastack/eventing/aggregate"
)

type (
	Incremented struct{ Amount int }
	Reset       struct{}

	// LegacyAdded is the obsolete name of Incremented.
	LegacyAdded struct{ N int }
)

var errNegativeAmount = errors.New("amount must not be negative")

type counter struct {
	Root

	Total   int
	Applied []any
}

func newCounter(id string) *counter {
	c := &counter{}
	c.Init(c, "counter", id)
	return c
}

func (c *counter) ApplyEvent(payload any) error {
	switch p := payload.(type) {
	case Incremented:
		if p.Amount < 0 {
			return errNegativeAmount
		}
		c.Total += p.Amount
	case Reset:
		c.Total = 0
	default:
		return fmt.Errorf("unexpected payload: %T", payload)
	}

	c.Applied = append(c.Applied, payload)
	return nil
}

func (c *counter) Dehydrate() (map[string]any, error) {
	return map[string]any{"total": c.Total}, nil
}

func (c *counter) Rehydrate(p Properties) error {
	_, err := p.Get("total", &c.Total)
	return err
}

// migratingCounter understands the legacy "LegacyAdded" event.
type migratingCounter struct {
	counter
}

func newMigratingCounter(id string) *migratingCounter {
	c := &migratingCounter{}
	c.Init(c, "counter", id)
	return c
}

func (c *migratingCounter) Migrate(eventType string, data []byte, _ string) (any, bool, error) {
	if eventType != "LegacyAdded" {
		return nil, false, nil
	}

	var legacy LegacyAdded
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, false, err
	}

	return Incremented{Amount: legacy.N}, true, nil
}

// plain does not support snapshots.
type plain struct {
	Root
}

func (*plain) ApplyEvent(any) error { return nil }
