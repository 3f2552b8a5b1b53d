package domain

import (
	"strings"
	"time"
)

// Access roles used on flavours and documents.
const (
	// RoleSysadmin is the internal admin role; always present on staged
	// documents.
	RoleSysadmin = "sysadmin"

	// RolePublic grants anonymous read access. It is withheld when the
	// owning record classifies as an anonymous individual.
	RolePublic = "public"
)

// AttachmentDocument is a staged binary attachment belonging to a master
// record.
type AttachmentDocument struct {
	// ID is the document's identity.
	ID string

	// Key is the durable storage key the bytes were uploaded under.
	Key string

	// FileName is the sanitized originating file name.
	FileName string

	// UploadedBy is the label of the uploader (the pipeline's author label).
	UploadedBy string

	// ReadRoles and WriteRoles are the document's independent role sets.
	ReadRoles  []string
	WriteRoles []string

	// AddedAt is when the document was staged.
	AddedAt time.Time
}

// AttachmentDescriptor identifies a qualifying upstream attachment before it
// has been downloaded.
type AttachmentDescriptor struct {
	// RecordID is the upstream record identity the attachment belongs to.
	RecordID string

	// AttachmentID is the upstream attachment identity.
	AttachmentID string

	// FileName is the upstream file name when the listing exposes one;
	// otherwise it is taken from the download's content disposition.
	FileName string
}

// DocumentReadRoles computes the read role set for a document or flavour
// owned by the given entity: the internal admin role, plus public only when
// the owner does not classify as an anonymous individual.
func DocumentReadRoles(issuedTo Entity) []string {
	roles := []string{RoleSysadmin}
	if !issuedTo.IsAnonymous() {
		roles = append(roles, RolePublic)
	}
	return roles
}

// RemoveRole returns roles with every occurrence of role removed, preserving
// order.
func RemoveRole(roles []string, role string) []string {
	var out []string
	for _, r := range roles {
		if r != role {
			out = append(out, r)
		}
	}
	return out
}

// SanitizeFileName strips characters outside the storage key allow-list
// (letters, digits, dot, dash, underscore). Runs of disallowed characters
// collapse to a single underscore.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
