package placement

type Level string

const (
	Beginner          Level = "Beginner"
	Elementary        Level = "Elementary"
	Intermediate      Level = "Intermediate"
	UpperIntermediate Level = "Upper Intermediate"
	Advanced          Level = "Advanced"
)

// Levels is the proficiency scale in ascending order.
var Levels = []Level{Beginner, Elementary, Intermediate, UpperIntermediate, Advanced}

func ParseLevel(s string) (Level, bool) {
	for _, l := range Levels {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}
