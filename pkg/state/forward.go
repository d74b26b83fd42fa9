package state

// forward installs a per-instance accessor that makes storage contents
// appear as direct instance members: reads return the same-named key on
// the designated storage object, writes assign to it. The storage key is
// resolved at access time, so forwarding may be installed before the
// backing store exists.
func (u *Unit) forward(storageKey, name string) {
	u.accessors[name] = accessor{
		get: func() any {
			return u.storage(storageKey).Get(name)
		},
		set: func(value any) {
			u.storage(storageKey).Set(name, value)
		},
	}
}
