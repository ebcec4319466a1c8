package catalog

import "strconv"

// idString renders a row's autoincrement rowid as the string ID exposed on
// domain structs — FileMapping.ID is a string everywhere outside this
// package, even though sqlite stores it as an integer primary key.
func idString(rowID int64) string {
	return strconv.FormatInt(rowID, 10)
}

func idInt(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}
