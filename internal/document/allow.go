package document

// Allowlist is the set of references the site offers to visitors. Local
// references are compared by their resolved name, so "/documents/a.pdf"
// and "a.pdf" are the same entry. Remote references must match exactly.
// It is built once and read-only afterwards.
type Allowlist struct {
	resolver *Resolver
	keys     map[string]struct{}
}

// NewAllowlist returns an empty list resolving local names through r.
func NewAllowlist(r *Resolver) *Allowlist {
	return &Allowlist{resolver: r, keys: make(map[string]struct{})}
}

// Add offers refs. Invalid local references are ignored.
func (a *Allowlist) Add(refs ...Ref) {
	for _, ref := range refs {
		if k, ok := a.key(ref); ok {
			a.keys[k] = struct{}{}
		}
	}
}

// Allowed reports whether ref was offered.
func (a *Allowlist) Allowed(ref Ref) bool {
	k, ok := a.key(ref)
	if !ok {
		return false
	}
	_, ok = a.keys[k]
	return ok
}

// Len is the number of offered references.
func (a *Allowlist) Len() int { return len(a.keys) }

func (a *Allowlist) key(ref Ref) (string, bool) {
	if ref == "" {
		return "", false
	}
	if ref.Remote() {
		return "remote:" + string(ref), true
	}
	name, err := a.resolver.Name(ref)
	if err != nil {
		return "", false
	}
	return "local:" + name, true
}
