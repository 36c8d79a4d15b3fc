package budget

import (
	"encoding/json"
	"fmt"
	"time"
)

// Op is the kind of change made to a collection.
type Op string

const (
	OpAdd     Op = "add"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
	OpSet     Op = "set"
	OpRestore Op = "restore"
)

// Change describes one in-memory change made by the Ledger.
//
// ID is empty when the change is not about a single record, like a balance
// update or a restore.
type Change struct {
	Op         Op
	Collection Collection
	ID         string
	At         time.Time
}

func (c Change) String() string {
	if c.ID == "" {
		return fmt.Sprintf("%s %s", c.Op, c.Collection)
	}
	return fmt.Sprintf("%s %s %s", c.Op, c.Collection, c.ID)
}

func (c Change) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("op", c.Op)
	w.Optional("collection", string(c.Collection))
	w.Optional("id", c.ID)
	w.Append("at", c.At.UTC().Format(time.RFC3339Nano))
	return w.MarshalJSON()
}

func (c *Change) UnmarshalJSON(data []byte) error {
	var j struct {
		Op         Op         `json:"op"`
		Collection Collection `json:"collection"`
		ID         string     `json:"id"`
		At         time.Time  `json:"at"`
	}
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*c = Change(j)
	return nil
}

// Notifier is told about every change, synchronously, while the ledger is
// locked. It must not call back into the ledger.
type Notifier interface {
	Notify(Change)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Change)

func (f NotifierFunc) Notify(c Change) { f(c) }
