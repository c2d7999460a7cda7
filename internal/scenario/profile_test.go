package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileWith(t *testing.T) {
	t.Parallel()

	p := Profile{Name: "Alice", Age: 30}

	q := p.WithName("Bob").WithAge(31)

	assert.Equal(t, Profile{Name: "Alice", Age: 30}, p)
	assert.Equal(t, Profile{Name: "Bob", Age: 31}, q)
	assert.Equal(t, "Bob (31)", q.String())
}

func TestProfileConsistent(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		p    Profile
		want bool
	}{
		"generated":  {p: profileFor(42), want: true},
		"zero":       {p: profileFor(0), want: true},
		"mixed":      {p: Profile{Name: "user-1", Age: 2}, want: false},
		"foreign":    {p: Profile{Name: "Alice", Age: 30}, want: false},
		"not number": {p: Profile{Name: "user-x", Age: 0}, want: false},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.p.consistent())
		})
	}
}

func TestFieldProfileFailedUpdate(t *testing.T) {
	t.Parallel()

	p := fieldProfile{name: "Alice", age: 30}

	require.Error(t, p.update("Bob", -1))
	assert.Equal(t, "Bob", p.name)
	assert.Equal(t, 30, p.age)

	require.NoError(t, p.update("Carol", 40))
	assert.Equal(t, fieldProfile{name: "Carol", age: 40}, p)
}
