package thread

import (
	"fmt"
	"time"

	"github.com/nhle/mailscope/internal/model"
)

// Group is one displayed conversation: the messages sharing a thread
// key, ordered oldest first for chronological reading. The group's
// rank among groups is determined by its newest message.
type Group struct {
	// Key is the thread key, or the message identity for a keyless
	// singleton.
	Key string

	// Messages is ordered oldest to newest.
	Messages []model.Message
}

// Newest returns the most recent message of the group.
func (g *Group) Newest() *model.Message {
	return &g.Messages[len(g.Messages)-1]
}

// Subject returns the subject of the oldest message, which names the
// conversation.
func (g *Group) Subject() string {
	if s := g.Messages[0].Subject; s != nil {
		return *s
	}
	return ""
}

// Bucket is a labeled partition of thread groups for display:
// "Today", "This week", "This month", an "MM-YYYY" literal, or the
// terminal "Date Error" pseudo-bucket for groups whose representative
// date failed to parse.
type Bucket struct {
	Label  string
	Groups []Group
}

// dateErrorLabel marks groups without a parseable representative date.
// The bucket is always emitted last and never crashes assembly.
const dateErrorLabel = "Date Error"

// Assemble groups a flat, date-descending message list into threads
// and date buckets. It holds no state and is recomputed on every read
// on purpose: bucket boundaries depend on now.
func Assemble(messages []model.Message, now time.Time) []Bucket {
	groups := groupByKey(messages)

	byLabel := make(map[string]int)
	var buckets []Bucket
	for _, g := range groups {
		label := bucketLabel(g.Newest(), now)
		idx, ok := byLabel[label]
		if !ok {
			idx = len(buckets)
			byLabel[label] = idx
			buckets = append(buckets, Bucket{Label: label})
		}
		buckets[idx].Groups = append(buckets[idx].Groups, g)
	}

	return orderBuckets(buckets)
}

// groupByKey collapses a date-descending message list into groups in
// first-seen order. Because the input is newest-first, first-seen
// order equals ranking by each group's newest message, and reversing
// each group's members yields oldest-first reading order. Messages
// without a thread key always form their own singleton group, even
// when identities collide on the missing-id sentinel.
func groupByKey(messages []model.Message) []Group {
	byKey := make(map[string]int)
	var groups []Group

	for _, m := range messages {
		if m.ThreadKey == nil || *m.ThreadKey == "" {
			groups = append(groups, Group{Key: m.Identity(), Messages: []model.Message{m}})
			continue
		}
		key := *m.ThreadKey
		idx, ok := byKey[key]
		if !ok {
			idx = len(groups)
			byKey[key] = idx
			groups = append(groups, Group{Key: key})
		}
		groups[idx].Messages = append(groups[idx].Messages, m)
	}

	for i := range groups {
		reverse(groups[i].Messages)
	}
	return groups
}

// bucketLabel assigns a group to its date bucket based on the
// representative (newest) message and the caller's current local time.
func bucketLabel(newest *model.Message, now time.Time) string {
	if newest.SentDate == nil {
		return dateErrorLabel
	}

	sent := time.Unix(*newest.SentDate, 0).In(now.Location())

	sy, sm, sd := sent.Date()
	ny, nm, nd := now.Date()
	if sy == ny && sm == nm && sd == nd {
		return "Today"
	}

	sentYear, sentWeek := sent.ISOWeek()
	nowYear, nowWeek := now.ISOWeek()
	if sentYear == nowYear && sentWeek == nowWeek {
		return "This week"
	}

	if sy == ny && sm == nm {
		return "This month"
	}

	return fmt.Sprintf("%02d-%d", int(sm), sy)
}

// orderBuckets emits the fixed-priority buckets first, the monthly
// buckets in the order their groups appeared (newest first, since the
// input was date-descending), and the date-error bucket last.
func orderBuckets(buckets []Bucket) []Bucket {
	ordered := make([]Bucket, 0, len(buckets))

	for _, label := range []string{"Today", "This week", "This month"} {
		for _, b := range buckets {
			if b.Label == label {
				ordered = append(ordered, b)
			}
		}
	}
	for _, b := range buckets {
		switch b.Label {
		case "Today", "This week", "This month", dateErrorLabel:
			continue
		}
		ordered = append(ordered, b)
	}
	for _, b := range buckets {
		if b.Label == dateErrorLabel {
			ordered = append(ordered, b)
		}
	}

	return ordered
}

func reverse(msgs []model.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
