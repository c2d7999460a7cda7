package scenario

import (
	"fmt"
	"strconv"
	"strings"
)

// Profile is an immutable record. The With methods return modified copies.
type Profile struct {
	Name string
	Age  int
}

func (p Profile) WithName(name string) Profile {
	p.Name = name

	return p
}

func (p Profile) WithAge(age int) Profile {
	p.Age = age

	return p
}

func (p Profile) String() string {
	return fmt.Sprintf("%s (%d)", p.Name, p.Age)
}

// profileFor returns a profile whose name encodes its age, so that a value
// mixing fields from two writes can be detected.
func profileFor(n int) Profile {
	return Profile{Name: "user-" + strconv.Itoa(n), Age: n}
}

func (p Profile) consistent() bool {
	n, ok := strings.CutPrefix(p.Name, "user-")
	if !ok {
		return false
	}

	age, err := strconv.Atoi(n)

	return err == nil && age == p.Age
}

func validateAge(age int) error {
	if age < 0 || age > 150 {
		return fmt.Errorf("age %d out of range", age)
	}

	return nil
}

// fieldProfile is updated in place one field at a time.
type fieldProfile struct {
	name string
	age  int
}

// update writes name before validating age, so a failed validation leaves
// the new name next to the old age.
func (p *fieldProfile) update(name string, age int) error {
	p.name = name

	if err := validateAge(age); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	p.age = age

	return nil
}
