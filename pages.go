package main

import "fmt"

// ResultSet is the accumulated list of records for one query session.
// Ids are unique and records keep their arrival order.
type ResultSet struct {
	images []ImageData
	ids    map[string]struct{}
}

func NewResultSet() *ResultSet {
	return &ResultSet{ids: map[string]struct{}{}}
}

// Replace discards everything and keeps the first occurrence of each id in images.
func (rs *ResultSet) Replace(images []ImageData) {
	rs.images = nil
	rs.ids = make(map[string]struct{}, len(images))
	rs.Append(images)
}

// Append adds the records whose id is not present yet and returns how many were added.
func (rs *ResultSet) Append(images []ImageData) int {
	added := 0
	for _, img := range images {
		if _, dup := rs.ids[img.Id]; dup {
			continue
		}
		rs.ids[img.Id] = struct{}{}
		rs.images = append(rs.images, img)
		added++
	}
	return added
}

func (rs *ResultSet) Clear() {
	rs.Replace(nil)
}

func (rs *ResultSet) Len() int {
	return len(rs.images)
}

// Images returns a copy safe to hand to other goroutines.
func (rs *ResultSet) Images() []ImageData {
	out := make([]ImageData, len(rs.images))
	copy(out, rs.images)
	return out
}

func (rs *ResultSet) String() string {
	return fmt.Sprintf("ResultSet[%d]", len(rs.images))
}
