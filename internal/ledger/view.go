package ledger

import "time"

// DayLayout formats the key of a day section, e.g. "10 January 2024".
const DayLayout = "2 January 2006"

// Entry is a transaction together with the account balance just after it.
type Entry struct {
	Transaction
	RunningBalance int64 `json:"runningBalance"`
}

// Day groups the entries cleared on one calendar day.
type Day struct {
	Key     string  `json:"key"`
	Entries []Entry `json:"entries"`
}

// GroupByDay splits the account's transactions into calendar days in loc,
// newest first. The running balance of an entry is the account balance
// minus the amounts of every newer transaction.
func GroupByDay(a Account, loc *time.Location) []Day {
	if loc == nil {
		loc = time.Local
	}

	days := []Day{}
	running := a.Balance
	for _, t := range a.Transactions {
		e := Entry{Transaction: t, RunningBalance: running}
		running -= t.Amount

		key := t.Cleared.In(loc).Format(DayLayout)
		if n := len(days); n > 0 && days[n-1].Key == key {
			days[n-1].Entries = append(days[n-1].Entries, e)
			continue
		}
		days = append(days, Day{Key: key, Entries: []Entry{e}})
	}
	return days
}
