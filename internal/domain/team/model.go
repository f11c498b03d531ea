package team

import "strconv"

// Team is one club in the feed catalogue.
type Team struct {
	ID        int
	Name      string
	ShortName string
}

func (t Team) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return "Team #" + strconv.Itoa(t.ID)
}
