package order

import (
	"errors"
	"testing"

	"foodiedelight/internal/models"
)

func strPtr(s string) *string { return &s }

func TestNormalizeContact(t *testing.T) {
	tests := []struct {
		name      string
		contact   models.ContactInfo
		wantEmail *string
		wantPhone *string
		wantField string
	}{
		{
			name: "no contact at all",
		},
		{
			name:      "valid email and phone are trimmed",
			contact:   models.ContactInfo{Email: strPtr("  jane@example.com "), Phone: strPtr(" +1 (555) 010-2030 ")},
			wantEmail: strPtr("jane@example.com"),
			wantPhone: strPtr("+1 (555) 010-2030"),
		},
		{
			name:    "blank values become absent",
			contact: models.ContactInfo{Email: strPtr("   "), Phone: strPtr("")},
		},
		{
			name:      "invalid email",
			contact:   models.ContactInfo{Email: strPtr("not-an-email")},
			wantField: "customer_email",
		},
		{
			name:      "display name form is rejected",
			contact:   models.ContactInfo{Email: strPtr("Jane <jane@example.com>")},
			wantField: "customer_email",
		},
		{
			name:      "phone with letters",
			contact:   models.ContactInfo{Phone: strPtr("555-CALL-NOW")},
			wantField: "customer_phone",
		},
		{
			name:      "phone with too few digits",
			contact:   models.ContactInfo{Phone: strPtr("+1 (2) 3-4")},
			wantField: "customer_phone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeContact(tt.contact)
			if tt.wantField != "" {
				var verr ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("NormalizeContact() error = %v, want ValidationError", err)
				}
				if verr.Field != tt.wantField {
					t.Errorf("field = %q, want %q", verr.Field, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeContact() unexpected error = %v", err)
			}
			if !equalPtr(got.Email, tt.wantEmail) {
				t.Errorf("email = %v, want %v", deref(got.Email), deref(tt.wantEmail))
			}
			if !equalPtr(got.Phone, tt.wantPhone) {
				t.Errorf("phone = %v, want %v", deref(got.Phone), deref(tt.wantPhone))
			}
		})
	}
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
