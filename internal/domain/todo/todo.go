package todo

import "time"

// DateLayout is the calendar-day format used for the date key of every item.
const DateLayout = "2006-01-02"

// Todo is one entry of a user's embedded list. Date is an opaque string key:
// it is compared for equality only, never parsed as a range.
type Todo struct {
	ID          string `json:"_id" bson:"_id"`
	Date        string `json:"date" bson:"date"`
	Task        string `json:"task" bson:"task"`
	IsCompleted bool   `json:"isCompleted" bson:"isCompleted"`
}

// New returns an incomplete item. The store assigns its id on save.
func New(date, task string) Todo {
	return Todo{
		Date:        date,
		Task:        task,
		IsCompleted: false,
	}
}

// Today formats t as a date key in loc. A nil loc keeps t's own location.
func Today(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}

	return t.Format(DateLayout)
}

func Append(items []Todo, item Todo) []Todo {
	out := make([]Todo, 0, len(items)+1)
	out = append(out, items...)

	return append(out, item)
}

// FilterByDate keeps the items whose date equals date exactly, in list order.
func FilterByDate(items []Todo, date string) []Todo {
	out := make([]Todo, 0, len(items))

	for _, item := range items {
		if item.Date == date {
			out = append(out, item)
		}
	}

	return out
}

// Remove drops the items whose id equals id. A miss returns an unchanged copy.
func Remove(items []Todo, id string) []Todo {
	out := make([]Todo, 0, len(items))

	for _, item := range items {
		if item.ID == id {
			continue
		}
		out = append(out, item)
	}

	return out
}

// Toggle flips IsCompleted on the item matching id and replaces its task when
// task is non-empty. The completion flag is always negated, never set.
// The bool result reports whether an item matched.
func Toggle(items []Todo, id, task string) ([]Todo, bool) {
	out := make([]Todo, len(items))
	copy(out, items)

	matched := false

	for i := range out {
		if out[i].ID != id {
			continue
		}

		if task != "" {
			out[i].Task = task
		}
		out[i].IsCompleted = !out[i].IsCompleted
		matched = true
	}

	return out, matched
}
