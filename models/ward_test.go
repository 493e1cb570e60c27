package models

import "testing"

// TestFindWard checks directory lookup for known and unknown ids.
func TestFindWard(t *testing.T) {
	ward, ok := FindWard("ward-34")
	if !ok {
		t.Fatal("ward-34 not found in directory")
	}
	if ward.Name != "Ward 34-Narhe Wadgaon Budruk" {
		t.Errorf("unexpected name: %q", ward.Name)
	}

	if _, ok := FindWard("ward-99"); ok {
		t.Error("ward-99 should not exist")
	}
	if IsValidWard("") {
		t.Error("empty id should be invalid")
	}
}

// TestWardDirectoryOrder ensures the directory keeps its fixed order.
func TestWardDirectoryOrder(t *testing.T) {
	if len(Wards) != 8 {
		t.Fatalf("directory has %d wards, want 8", len(Wards))
	}
	if Wards[0].ID != "ward-32" || Wards[len(Wards)-1].ID != "ward-39" {
		t.Errorf("directory order changed: first=%s last=%s", Wards[0].ID, Wards[len(Wards)-1].ID)
	}
}

// TestCategoryValidity checks the fixed category enumeration.
func TestCategoryValidity(t *testing.T) {
	for _, c := range Categories {
		if !IsValidCategory(string(c)) {
			t.Errorf("category %q reported invalid", c)
		}
	}
	if IsValidCategory("Road") {
		t.Error("legacy category name should be invalid")
	}
	if IsValidCategory("") {
		t.Error("empty category should be invalid")
	}
}

// TestStatusValidity checks the fixed status enumeration.
func TestStatusValidity(t *testing.T) {
	for _, s := range []string{"reported", "in-progress", "resolved"} {
		if !IsValidStatus(s) {
			t.Errorf("status %q reported invalid", s)
		}
	}
	if IsValidStatus("pending") {
		t.Error("pending should be invalid")
	}
}

// TestLocationPresence covers the coordinates-or-address rule.
func TestLocationPresence(t *testing.T) {
	lat, lng := 18.52, 73.86

	if (Location{}).IsPresent() {
		t.Error("empty location reported present")
	}
	if !(Location{Lat: &lat, Lng: &lng}).IsPresent() {
		t.Error("coordinates not recognized")
	}
	if !(Location{Address: "Katraj"}).IsPresent() {
		t.Error("address not recognized")
	}
	if (Location{Lat: &lat}).HasCoordinates() {
		t.Error("latitude alone should not count as coordinates")
	}
}

// TestHasUpvoted checks set membership on the issue.
func TestHasUpvoted(t *testing.T) {
	issue := Issue{UpvotedBy: []string{"a", "b"}}
	if !issue.HasUpvoted("a") || issue.HasUpvoted("c") {
		t.Errorf("membership wrong for %v", issue.UpvotedBy)
	}
}
