package recommend

import "time"

// Bracket is an inclusive age range.
type Bracket struct {
	Min int
	Max int
}

// Brackets partitions ages. The last bracket's upper bound stands in for
// "no limit".
var Brackets = []Bracket{
	{Min: 0, Max: 19},
	{Min: 20, Max: 29},
	{Min: 30, Max: 39},
	{Min: 40, Max: 49},
	{Min: 50, Max: 150},
}

// AgeAt is the number of whole years elapsed between birth and now.
func AgeAt(birth, now time.Time) int {
	birth, now = birth.UTC(), now.UTC()
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// BracketFor returns the bracket containing age.
func BracketFor(age int) Bracket {
	for _, b := range Brackets {
		if age <= b.Max {
			return b
		}
	}
	return Brackets[len(Brackets)-1]
}

// BirthRange returns the inclusive birthdate range of people whose age at
// now lies in the bracket. Birthdates are compared as UTC calendar dates.
func (b Bracket) BirthRange(now time.Time) (from, to time.Time) {
	to = latestBirthForAge(now, b.Min)
	from = latestBirthForAge(now, b.Max+1).AddDate(0, 0, 1)
	return from, to
}

// latestBirthForAge is the last birthdate whose AgeAt(now) is at least
// years. On 29 February the anniversary in a common year is 28 February.
func latestBirthForAge(now time.Time, years int) time.Time {
	y, m, d := now.UTC().Date()
	t := time.Date(y-years, m, d, 0, 0, 0, 0, time.UTC)
	if t.Month() != m {
		t = time.Date(y-years, m+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return t
}
