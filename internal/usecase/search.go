package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"diswantin/internal/domain"
	"diswantin/internal/domain/models"
)

const searchPageSize = 20

// SearchPage is one page of search results with the cursor for the
// next page, nil when the results are exhausted.
type SearchPage struct {
	Results    []models.TaskSummary `json:"results"`
	NextCursor *string              `json:"next_cursor,omitempty"`
}

// SearchTasks runs a full-text search over the user's task names. The
// cursor is opaque to callers; it encodes the last-seen internal id for
// keyset pagination.
func (s *TaskService) SearchTasks(ctx context.Context, user *models.User, query string, cursor *string, now time.Time) (*SearchPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{Fields: map[string]string{"query": "query is required"}}
	}

	afterID := int64(0)
	if cursor != nil {
		decoded, err := decodeCursor(*cursor)
		if err != nil {
			return nil, err
		}
		afterID = decoded
	}

	_, _, window := localDay(user, now)

	// Fetch one extra row to learn whether another page exists.
	results, err := s.repo.Search(ctx, user.ID, query, afterID, searchPageSize+1, window)
	if err != nil {
		return nil, err
	}

	page := &SearchPage{}
	more := len(results) > searchPageSize
	if more {
		results = results[:searchPageSize]
	}
	var lastID int64
	for _, result := range results {
		done := result.HasCompletion
		if result.Recurring {
			done = result.DoneInWindow
		}
		page.Results = append(page.Results, models.TaskSummary{
			ID:     result.Task.ClientID,
			Name:   result.Task.Name,
			IsDone: done,
		})
		lastID = result.Task.ID
	}
	if more {
		next := encodeCursor(lastID)
		page.NextCursor = &next
	}
	return page, nil
}

func encodeCursor(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

func decodeCursor(cursor string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed cursor", domain.ErrBadParamInput)
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed cursor", domain.ErrBadParamInput)
	}
	return id, nil
}

// HeadlineSegment is one run of a search headline, highlighted when it
// matched a query term.
type HeadlineSegment struct {
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted"`
}

// BuildSearchHeadline splits text into highlighted and plain runs for
// display. A word highlights when any query term is a case-insensitive
// prefix of it. Pure string function.
func BuildSearchHeadline(text, query string) []HeadlineSegment {
	terms := strings.Fields(strings.ToLower(query))
	if text == "" || len(terms) == 0 {
		if text == "" {
			return nil
		}
		return []HeadlineSegment{{Text: text}}
	}

	var segments []HeadlineSegment
	emit := func(run string, highlighted bool) {
		if run == "" {
			return
		}
		// Merge with the previous segment when the flag matches, so
		// plain runs stay contiguous across whitespace.
		if n := len(segments); n > 0 && segments[n-1].Highlighted == highlighted {
			segments[n-1].Text += run
			return
		}
		segments = append(segments, HeadlineSegment{Text: run, Highlighted: highlighted})
	}

	rest := text
	for rest != "" {
		// Split off leading whitespace, then the next word.
		i := 0
		for i < len(rest) && rest[i] == ' ' {
			i++
		}
		emit(rest[:i], false)
		rest = rest[i:]

		j := strings.IndexByte(rest, ' ')
		word := rest
		if j >= 0 {
			word = rest[:j]
			rest = rest[j:]
		} else {
			rest = ""
		}
		emit(word, wordMatches(word, terms))
	}
	return segments
}

func wordMatches(word string, terms []string) bool {
	lowered := strings.ToLower(word)
	for _, term := range terms {
		if strings.HasPrefix(lowered, term) {
			return true
		}
	}
	return false
}
