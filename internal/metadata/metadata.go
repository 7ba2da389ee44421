// Package metadata emits the static CSDL XML document and the JSON service
// document, per spec.md §6.
package metadata

import (
	"fmt"
	"strings"

	"github.com/rechat/reso-odata/internal/odata/fieldmap"
)

// edmType names the CSDL Edm primitive (or collection) type for one RESO
// field. Kept as an explicit table rather than inferred from Go reflection
// because the backend driver types don't line up 1:1 with Edm types.
var edmType = map[string]string{
	"ListingKey":             "Edm.String",
	"ListPrice":               "Edm.Decimal",
	"StandardStatus":          "Edm.String",
	"City":                    "Edm.String",
	"StateOrProvince":         "Edm.String",
	"PostalCode":              "Edm.String",
	"StreetNumber":            "Edm.String",
	"StreetName":              "Edm.String",
	"UnparsedAddress":         "Edm.String",
	"BedroomsTotal":           "Edm.Int32",
	"BathroomsTotalInteger":   "Edm.Int32",
	"LivingArea":              "Edm.Decimal",
	"LotSizeSquareFeet":       "Edm.Decimal",
	"YearBuilt":               "Edm.Int32",
	"PropertyType":            "Edm.String",
	"PropertySubType":         "Edm.String",
	"Latitude":                "Edm.Decimal",
	"Longitude":               "Edm.Decimal",
	"PublicRemarks":           "Edm.String",
	"ListAgentKey":            "Edm.Int32",
	"ListOfficeKey":           "Edm.Int32",
	"ModificationTimestamp":   "Edm.DateTimeOffset",
	"OnMarketDate":            "Edm.Date",
	"ClosePrice":              "Edm.Decimal",
	"CloseDate":               "Edm.Date",
	"PhotosCount":             "Edm.Int32",
	"MemberKey":               "Edm.Int32",
	"MemberFirstName":         "Edm.String",
	"MemberLastName":          "Edm.String",
	"MemberFullName":          "Edm.String",
	"MemberEmail":             "Edm.String",
	"MemberDirectPhone":       "Edm.String",
	"MemberMlsId":             "Edm.String",
	"OfficeKey":               "Edm.Int32",
	"MemberStatus":            "Edm.String",
	"OfficeName":              "Edm.String",
	"OfficePhone":             "Edm.String",
	"OfficeAddress1":          "Edm.String",
	"OfficeCity":              "Edm.String",
	"OfficeStateOrProvince":   "Edm.String",
	"OfficePostalCode":        "Edm.String",
	"OfficeMlsId":             "Edm.String",
}

// entityType is one CSDL EntityType to render, carrying its own field map
// plus any fields not present in the map (e.g. "Media", a collection of
// the Media ComplexType, populated by the resource driver rather than read
// directly off a column).
type entityType struct {
	Name         string
	FieldMap     *fieldmap.Map
	ExtraFields  []string // name -> rendered via extraType
}

func extraType(name string) string {
	if name == "Media" {
		return "Collection(org.reso.metadata.Media)"
	}
	return "Edm.String"
}

// Render builds the full CSDL XML document for Property, Member, Office.
func Render(propertyMap, memberMap, officeMap *fieldmap.Map) string {
	types := []entityType{
		{Name: "Property", FieldMap: propertyMap, ExtraFields: []string{"Media"}},
		{Name: "Member", FieldMap: memberMap},
		{Name: "Office", FieldMap: officeMap},
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<edmx:Edmx Version="4.0" xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx">` + "\n")
	b.WriteString(`  <edmx:DataServices>` + "\n")
	b.WriteString(`    <Schema Namespace="org.reso.metadata" xmlns="http://docs.oasis-open.org/odata/ns/edm">` + "\n")

	b.WriteString(`      <ComplexType Name="Media">` + "\n")
	for _, f := range []string{"MediaKey", "ResourceRecordKey", "MediaURL"} {
		fmt.Fprintf(&b, `        <Property Name="%s" Type="Edm.String"/>`+"\n", f)
	}
	b.WriteString(`        <Property Name="Order" Type="Edm.Int32"/>` + "\n")
	b.WriteString(`      </ComplexType>` + "\n")

	for _, et := range types {
		fmt.Fprintf(&b, `      <EntityType Name="%s">`+"\n", et.Name)
		fmt.Fprintf(&b, `        <Key><PropertyRef Name="%s"/></Key>`+"\n", et.FieldMap.KeyField)
		for _, f := range et.FieldMap.Fields() {
			t := edmType[f.Name]
			if t == "" {
				t = "Edm.String"
			}
			fmt.Fprintf(&b, `        <Property Name="%s" Type="%s"/>`+"\n", f.Name, t)
		}
		for _, extra := range et.ExtraFields {
			fmt.Fprintf(&b, `        <Property Name="%s" Type="%s"/>`+"\n", extra, extraType(extra))
		}
		b.WriteString(`      </EntityType>` + "\n")
	}

	b.WriteString(`      <EntityContainer Name="Container">` + "\n")
	for _, et := range types {
		fmt.Fprintf(&b, `        <EntitySet Name="%s" EntityType="org.reso.metadata.%s"/>`+"\n", pluralize(et.Name), et.Name)
	}
	b.WriteString(`      </EntityContainer>` + "\n")

	b.WriteString(`    </Schema>` + "\n")
	b.WriteString(`  </edmx:DataServices>` + "\n")
	b.WriteString(`</edmx:Edmx>` + "\n")

	return b.String()
}

// pluralize maps an EntityType name to its EntitySet name. All three
// resources here use the bare singular name as the set name too
// (spec.md §4.6's routes are /Property, /Member, /Office), so this is the
// identity function, kept distinct from Name for clarity at call sites.
func pluralize(entityTypeName string) string {
	return entityTypeName
}

// ServiceDocument is the /odata/ JSON index (spec.md §6).
type ServiceDocument struct {
	Context string           `json:"@odata.context"`
	Value   []ServiceEntrySet `json:"value"`
}

type ServiceEntrySet struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

func NewServiceDocument(odataRoot string) ServiceDocument {
	sets := []string{"Property", "Member", "Office"}
	entries := make([]ServiceEntrySet, len(sets))
	for i, s := range sets {
		entries[i] = ServiceEntrySet{Name: s, Kind: "EntitySet", URL: s}
	}
	return ServiceDocument{
		Context: strings.TrimSuffix(odataRoot, "/") + "/$metadata",
		Value:   entries,
	}
}
