package container

// ── Qualifiers ────────────────────────────────────────────────────────────────

// Qualifier is the caching policy applied to a resolved value.
type Qualifier int

const (
	// Transient values are never cached; every resolution re-invokes the resolver.
	Transient Qualifier = iota
	// Scoped values are cached once per container instance.
	Scoped
	// Singleton values are cached once at the root and shared by the whole tree.
	Singleton
)

func (q Qualifier) String() string {
	switch q {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// ── Descriptor ────────────────────────────────────────────────────────────────

// ResolverFunc builds a value, requesting other dependencies through r.
type ResolverFunc func(r Resolver) (any, error)

// Descriptor is a resolution recipe plus its qualifier.
//
// Descriptors are values: Scoped, Singleton and Transient return a copy, so a
// base descriptor can be registered under several names with different policies.
//
//	c.Register("clock", container.Constant(time.Now))
//	c.Register("db", container.Factory(openDB).Singleton())
type Descriptor struct {
	resolve   ResolverFunc
	qualifier Qualifier

	// set on placeholders installed for deferred providers
	deferred bool
}

// Scoped returns a copy of d cached once per container.
func (d Descriptor) Scoped() Descriptor {
	d.qualifier = Scoped
	return d
}

// Singleton returns a copy of d cached once at the root container.
func (d Descriptor) Singleton() Descriptor {
	d.qualifier = Singleton
	return d
}

// Transient returns a copy of d that is never cached.
func (d Descriptor) Transient() Descriptor {
	d.qualifier = Transient
	return d
}

// Qualifier reports the caching policy of d.
func (d Descriptor) Qualifier() Qualifier { return d.qualifier }

// Valid reports whether d carries a resolver.
func (d Descriptor) Valid() bool { return d.resolve != nil }

// Resolve invokes the resolver directly, bypassing any container cache.
// Useful to unit test a resolver against a Values map.
func (d Descriptor) Resolve(r Resolver) (any, error) {
	if d.resolve == nil {
		return nil, ErrInvalidDescriptor
	}
	return d.resolve(r)
}

// ── Builders ──────────────────────────────────────────────────────────────────

// Constant returns a Scoped descriptor that always yields value.
func Constant(value any) Descriptor {
	return Descriptor{
		resolve:   func(Resolver) (any, error) { return value, nil },
		qualifier: Scoped,
	}
}

// Factory returns a Transient descriptor that calls fn on every resolution.
// A nil fn yields an invalid descriptor that Register rejects.
func Factory(fn ResolverFunc) Descriptor {
	return Descriptor{resolve: fn, qualifier: Transient}
}

// Provide is the typed form of Factory.
//
//	container.Provide(func(r container.Resolver) (*sql.DB, error) { ... })
func Provide[T any](fn func(r Resolver) (T, error)) Descriptor {
	if fn == nil {
		return Descriptor{}
	}
	return Factory(func(r Resolver) (any, error) { return fn(r) })
}

// Initializer is satisfied by *T when T has an Init(Resolver) error method.
type Initializer[T any] interface {
	*T
	Init(r Resolver) error
}

// Service returns a Transient descriptor that allocates a fresh *T and calls
// its Init method with the resolver, constructor style.
//
//	type Mailer struct{ smtp *SMTP }
//
//	func (m *Mailer) Init(r container.Resolver) (err error) {
//	    m.smtp, err = container.Get[*SMTP](r, "mail.smtp")
//	    return err
//	}
//
//	c.Register("mailer", container.Service[Mailer]())
func Service[T any, P Initializer[T]]() Descriptor {
	return Factory(func(r Resolver) (any, error) {
		instance := P(new(T))
		if err := instance.Init(r); err != nil {
			return nil, err
		}
		return instance, nil
	})
}
