package roles

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"student", "student"},
		{`"student"`, "student"},
		{" Parent ", "parent"},
		{`"PSYCHOLOGIST"`, "psychologist"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsValid(t *testing.T) {
	for _, r := range []string{Student, Parent, Psychologist, `"student"`} {
		if !IsValid(r) {
			t.Fatalf("IsValid(%q) = false", r)
		}
	}
	for _, r := range []string{"admin", "guardian", ""} {
		if IsValid(r) {
			t.Fatalf("IsValid(%q) = true", r)
		}
	}
}

func TestCan(t *testing.T) {
	if !Can(Student, "test-response:submit") {
		t.Fatal("student cannot submit")
	}
	if Can(Psychologist, "test-response:submit") {
		t.Fatal("psychologist can submit")
	}
	if !Can(Psychologist, "test-response:view-all") {
		t.Fatal("psychologist cannot view all")
	}
	if Can("stranger", "test:view") {
		t.Fatal("unknown role granted a permission")
	}
}
