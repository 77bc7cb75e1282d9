// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05",
	time.DateOnly,
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// Timestamp is a nullable instant that decodes from native database
// timestamps as well as from their string renderings.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// ParseTimestamp normalises a string rendering of an instant to UTC.
// Date-only values are midnight UTC. A trailing parenthesised zone name,
// as appended by JavaScript's Date.toString, is ignored.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, " ("); i > 0 && strings.HasSuffix(s, ")") {
		s = s[:i]
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func NewTimestamp(t *time.Time) Timestamp {
	if t == nil {
		return Timestamp{}
	}
	return Timestamp{Time: t.UTC(), Valid: true}
}

// Ptr returns nil for a null timestamp.
func (t Timestamp) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Timestamp{}
	case time.Time:
		*t = Timestamp{Time: v.UTC(), Valid: true}
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
	return nil
}

func (t Timestamp) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return t.Time, nil
}

func (t *Timestamp) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: bt, Value: data}

	switch bt {
	case bsontype.Null, bsontype.Undefined:
		*t = Timestamp{}
	case bsontype.DateTime:
		*t = Timestamp{Time: raw.Time().UTC(), Valid: true}
	case bsontype.Timestamp:
		sec, _ := raw.Timestamp()
		*t = Timestamp{Time: time.Unix(int64(sec), 0).UTC(), Valid: true}
	case bsontype.String:
		return t.parse(raw.StringValue())
	default:
		return fmt.Errorf("cannot decode BSON %s into Timestamp", bt)
	}
	return nil
}

func (t Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !t.Valid {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(t.Time)
}

func (t *Timestamp) parse(s string) error {
	if strings.TrimSpace(s) == "" {
		*t = Timestamp{}
		return nil
	}

	v, err := ParseTimestamp(s)
	if err != nil {
		return err
	}

	*t = Timestamp{Time: v, Valid: true}
	return nil
}
