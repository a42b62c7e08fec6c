// SPDX-License-Identifier: MPL-2.0

package cfgfile

const (
	// MetaSection is the name of the section holding file metadata.
	MetaSection = "Meta"
	// DefaultSection is the start section used when none is requested.
	DefaultSection = "Default"
	// VersionKey is the Meta key holding the file format version.
	VersionKey = "Version"
)

type (
	// Entry is one command line of a section.
	Entry struct {
		// Command is the text before the first '='.
		Command string
		// Args is everything after the first '='. It may be empty.
		Args string
		// Line is the 1-based source line number.
		Line int
	}

	// Section is a named, ordered list of entries. An empty section is valid.
	Section struct {
		Name    string
		Entries []Entry
	}

	// Config maps section names to sections. It is never mutated after Parse.
	Config struct {
		sections map[string]*Section
		order    []string
	}
)

// Section returns the named section.
func (c *Config) Section(name string) (*Section, bool) {
	s, ok := c.sections[name]
	return s, ok
}

// Names returns section names in declaration order.
func (c *Config) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Len returns the number of sections.
func (c *Config) Len() int {
	return len(c.order)
}

// Lookup returns the value of the first entry whose command equals key.
func (s *Section) Lookup(key string) (string, bool) {
	for _, e := range s.Entries {
		if e.Command == key {
			return e.Args, true
		}
	}
	return "", false
}

// Len returns the number of entries.
func (s *Section) Len() int {
	return len(s.Entries)
}
