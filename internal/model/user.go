package model

// Palette is the fixed set of colors assigned to users.
var Palette = []string{
	"#E63946", // red
	"#F4A261", // orange
	"#E9C46A", // yellow
	"#2A9D8F", // teal
	"#457B9D", // blue
	"#6D597A", // purple
	"#8AB17D", // green
	"#FF8FAB", // pink
}

// A User represents a database record.
// A user only identifies an author, anyone can log in under any name.
type User struct {
	Base `msgpack:",inline" storm:"inline"`

	Name   string `json:"name"             msgpack:"name"   storm:"unique" db:"name"`
	Color  string `json:"color"            msgpack:"color"                 db:"color"`
	Handle string `json:"handle,omitempty" msgpack:"handle"                db:"handle"`
	Avatar string `json:"avatar,omitempty" msgpack:"avatar"                db:"avatar"`
}

// NewUser returns a new user named name colored after the already registered users.
func NewUser(name string, users []*User) *User {
	used := make([]string, 0, len(users))
	for _, u := range users {
		used = append(used, u.Color)
	}

	return &User{
		Name:  name,
		Color: PickColor(used),
	}
}

// PickColor returns the first palette color not in used.
// Once the palette is exhausted, colors are assigned round-robin.
func PickColor(used []string) string {
	taken := map[string]bool{}
	for _, c := range used {
		taken[c] = true
	}

	for _, c := range Palette {
		if !taken[c] {
			return c
		}
	}
	return Palette[len(used)%len(Palette)]
}
