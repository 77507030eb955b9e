package sync

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"time"
)

// idTag prefixes every identifier this tool creates. Google event ids must
// stay within base32hex-ish character ranges, so the tag plus lowercase hex
// digest is the whole alphabet used.
const idTag = "cal"

// legacyIDRe matches identifiers created by earlier versions: bare md5 hex
// (the unprefixed first generation) or the current "cal"-prefixed form.
var legacyIDRe = regexp.MustCompile(`^(cal)?[a-f0-9]{32}$`)

// isoOffset renders the start instant with an explicit numeric UTC offset.
// The already-deployed ids were digested over "+00:00"-style renderings,
// never "Z", so a "Z" here would orphan every UTC-zoned entry.
const isoOffset = "2006-01-02T15:04:05-07:00"

// EventID derives the stable identifier of a session from its display
// summary and start instant.
//
// The digest input must not change shape: the ids of already-created remote
// events are the only link between runs, and any drift here would orphan
// every managed entry at once (full delete + reinsert). md5 is used for
// compatibility with the deployed id population; collision resistance at
// 128 bits is the requirement, secrecy is not.
func EventID(summary string, start time.Time) string {
	seed := idTag + "_" + summary + start.Format(isoOffset)
	sum := md5.Sum([]byte(seed))
	return idTag + hex.EncodeToString(sum[:])
}

// LegacyID reports whether id matches the identifier shape of entries
// created by pre-ownership-marker versions of this tool. Used only as a
// deletion fallback for calendars that still hold such entries.
func LegacyID(id string) bool {
	return legacyIDRe.MatchString(id)
}
