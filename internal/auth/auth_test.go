package auth

import "testing"

func TestIssueParseRoundTrip(t *testing.T) {
	svc := NewService("test-secret")
	student := 1001
	tok, err := svc.Issue("acct-1", "student", &student, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Sub != "acct-1" || claims.Role != "student" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.StudentID == nil || *claims.StudentID != 1001 || claims.ParentID != nil {
		t.Fatalf("principal ids = (%v, %v)", claims.StudentID, claims.ParentID)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := NewService("secret-a").Issue("acct-1", "student", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewService("secret-b").Parse(tok); err == nil {
		t.Fatal("token signed with a different secret parsed as valid")
	}
}

func TestParseUnverifiedReadsClaims(t *testing.T) {
	parent := 2001
	tok, err := NewService("server-only-secret").Issue("acct-2", "parent", nil, &parent)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseUnverified(tok)
	if err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if claims.Role != "parent" || claims.ParentID == nil || *claims.ParentID != 2001 {
		t.Fatalf("claims = %+v", claims)
	}
}
