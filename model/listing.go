package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// ID identifies a listing. The backend sends numeric ids but string ids are
// accepted as well, and 1 and "1" are the same ID. Canonical integers are
// written back as JSON numbers; anything else, 1.0 included, as a string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*id = ""
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*id = ID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", s, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.isNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

func (id ID) isNumeric() bool {
	s := string(id)
	s = strings.TrimPrefix(s, "-")
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Tag is a descriptive label on a listing, e.g. an idol member the owner
// holds or is looking for.
type Tag struct {
	ID   int64  `json:"idolMemberId,omitempty"`
	Name string `json:"name"`
}

func TagNames(tags []Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

// Listing is a trade post as returned by GET barter/{id}.
type Listing struct {
	ID            ID       `json:"id"`
	UserID        ID       `json:"userId,omitempty"`
	NickName      string   `json:"nickName,omitempty"`
	Title         string   `json:"title"`
	Content       string   `json:"content,omitempty"`
	Photos        []string `json:"photos"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	OwnMembers    []Tag    `json:"ownIdolMembers"`
	TargetMembers []Tag    `json:"findIdolMembers"`
	CardType      string   `json:"cardType,omitempty"`
	Bartered      bool     `json:"bartered"`
}

// Viewed snapshots the listing for the recently viewed history.
func (l *Listing) Viewed() ViewedItem {
	return ViewedItem{
		ID:         l.ID,
		Title:      l.Title,
		Images:     slices.Clone(l.Photos),
		OwnTags:    slices.Clone(l.OwnMembers),
		TargetTags: slices.Clone(l.TargetMembers),
		IsResolved: l.Bartered,
	}
}

// ViewedItem is one entry of the recently viewed history. The JSON names
// match the blob the web client keeps under the same storage key.
type ViewedItem struct {
	ID         ID       `json:"id"`
	Title      string   `json:"title"`
	Images     []string `json:"images"`
	OwnTags    []Tag    `json:"ownMembers"`
	TargetTags []Tag    `json:"targetMembers"`
	IsResolved bool     `json:"isBartered"`
}

// Draft holds the text fields of a listing being composed. Photos travel
// separately through the ingestion pipeline.
type Draft struct {
	Title         string
	Content       string
	CardType      string
	GroupID       int64
	OwnMembers    []int64
	TargetMembers []int64
}

// ChatRoom is the conversation the backend opens between a viewer and the
// owner of a listing.
type ChatRoom struct {
	ID       ID `json:"chatRoomId"`
	BarterID ID `json:"barterId,omitempty"`
}
