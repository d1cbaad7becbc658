package cache

import (
	"strconv"
	"strings"
)

// KeySpace names the identifier family a cache key belongs to.
type KeySpace string

const (
	KeySpaceID           KeySpace = "id"
	KeySpaceAbbreviation KeySpace = "abbreviation"
)

const fileSuffix = "_games.csv"

// Key addresses one cached game log. The same key names the local file and the remote object.
type Key struct {
	Space KeySpace
	Value string
}

func IDKey(teamID int64) Key {
	return Key{Space: KeySpaceID, Value: strconv.FormatInt(teamID, 10)}
}

func AbbreviationKey(abbr string) Key {
	return Key{Space: KeySpaceAbbreviation, Value: strings.ToUpper(strings.TrimSpace(abbr))}
}

// Valid reports whether the key value is safe to use as a file name.
func (k Key) Valid() bool {
	if k.Space != KeySpaceID && k.Space != KeySpaceAbbreviation {
		return false
	}
	if k.Value == "" || len(k.Value) > 64 {
		return false
	}
	for _, r := range k.Value {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		default:
			return false
		}
	}
	return true
}

func (k Key) FileName() string {
	return k.Value + fileSuffix
}

func (k Key) String() string {
	return string(k.Space) + ":" + k.Value
}
