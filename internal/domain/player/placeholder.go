package player

import "strconv"

// PlaceholderName is used when a referenced player is missing from the catalogue.
func PlaceholderName(id int) string {
	return "Unknown player #" + strconv.Itoa(id)
}

// Lookup returns the snapshot for id, or a zero-valued placeholder when absent.
func Lookup(players map[int]Snapshot, id int) (Snapshot, bool) {
	if snapshot, ok := players[id]; ok {
		return snapshot, true
	}
	return Snapshot{ID: id, Status: PlayStatusNotStarted}, false
}
