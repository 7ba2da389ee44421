// Package resources declares the three exposed entity sets — Property,
// Member, Office — and drives list/get requests against them, per spec.md
// §3.1, §4.5.
package resources

import "github.com/rechat/reso-odata/internal/odata/fieldmap"

// PropertyMap is the RESO Property field map, grounded on the backend
// column names named in spec.md §8's concrete scenarios (IDCLISTPRICE,
// CITY, IDCLISTAGENTKEY, ...).
var PropertyMap = fieldmap.New("PROPERTY", "ListingKey", []fieldmap.Field{
	{Name: "ListingKey", Column: "IDSMLS"},
	{Name: "ListPrice", Column: "IDCLISTPRICE"},
	{Name: "StandardStatus", Column: "IDCMLSSTATUS"},
	{Name: "City", Column: "CITY"},
	{Name: "StateOrProvince", Column: "STATE"},
	{Name: "PostalCode", Column: "ZIP"},
	{Name: "StreetNumber", Column: "STREETNO"},
	{Name: "StreetName", Column: "STREETNAME"},
	{Name: "UnparsedAddress", Column: "FULLADDRESS"},
	{Name: "BedroomsTotal", Column: "BEDROOMS"},
	{Name: "BathroomsTotalInteger", Column: "BATHSTOTAL"},
	{Name: "LivingArea", Column: "SQFT"},
	{Name: "LotSizeSquareFeet", Column: "LOTSQFT"},
	{Name: "YearBuilt", Column: "YEARBUILT"},
	{Name: "PropertyType", Column: "PROPTYPE"},
	{Name: "PropertySubType", Column: "PROPSUBTYPE"},
	{Name: "Latitude", Column: "LAT"},
	{Name: "Longitude", Column: "LON"},
	{Name: "PublicRemarks", Column: "REMARKS"},
	{Name: "ListAgentKey", Column: "IDCLISTAGENTKEY"},
	{Name: "ListOfficeKey", Column: "IDCLISTOFFICEKEY"},
	{Name: "ModificationTimestamp", Column: "LASTMODIFIED"},
	{Name: "OnMarketDate", Column: "LISTDATE"},
	{Name: "ClosePrice", Column: "IDCCLOSEPRICE"},
	{Name: "CloseDate", Column: "CLOSEDATE"},
	{Name: "PhotosCount", Column: "PHOTOCOUNT"},
	{Name: "PhotoXML", Column: "PHOTOXML"},
})

// MemberMap is the RESO Member (agent) field map.
var MemberMap = fieldmap.New("AGENT", "MemberKey", []fieldmap.Field{
	{Name: "MemberKey", Column: "AGENTKEY"},
	{Name: "MemberFirstName", Column: "GIVENNAME"},
	{Name: "MemberLastName", Column: "SURNAME"},
	{Name: "MemberFullName", Column: "FULLNAME"},
	{Name: "MemberEmail", Column: "EMAIL"},
	{Name: "MemberDirectPhone", Column: "PHONE"},
	{Name: "MemberMlsId", Column: "MLSID"},
	{Name: "OfficeKey", Column: "OFFICEKEY"},
	{Name: "MemberStatus", Column: "AGENTSTATUS"},
	{Name: "ModificationTimestamp", Column: "LASTMODIFIED"},
})

// OfficeMap is the RESO Office field map.
var OfficeMap = fieldmap.New("OFFICE", "OfficeKey", []fieldmap.Field{
	{Name: "OfficeKey", Column: "OFFICEKEY"},
	{Name: "OfficeName", Column: "OFFICENAME"},
	{Name: "OfficePhone", Column: "PHONE"},
	{Name: "OfficeAddress1", Column: "ADDRESS"},
	{Name: "OfficeCity", Column: "CITY"},
	{Name: "OfficeStateOrProvince", Column: "STATE"},
	{Name: "OfficePostalCode", Column: "ZIP"},
	{Name: "OfficeMlsId", Column: "MLSID"},
	{Name: "ModificationTimestamp", Column: "LASTMODIFIED"},
})

// PropertyAllowedExpansions is Property's ALLOWED_EXPANSIONS set (spec.md §4.3).
var PropertyAllowedExpansions = map[string]bool{
	"ListAgent":  true,
	"ListOffice": true,
}

// Navigation describes how to satisfy one $expand name: which local RESO
// foreign-key field points at which target table/column, and the field
// map to reshape matched rows with.
type Navigation struct {
	Name          string // navigation property name, e.g. "ListAgent"
	LocalField    string // local RESO field holding the foreign key, e.g. "ListAgentKey"
	TargetTable   string
	TargetColumn  string // backend join column, e.g. "AGENTKEY"
	TargetFieldMap *fieldmap.Map
}

// PropertyNavigations lists Property's navigation properties in the order
// $expand should resolve them.
var PropertyNavigations = []Navigation{
	{Name: "ListAgent", LocalField: "ListAgentKey", TargetTable: "AGENT", TargetColumn: "AGENTKEY", TargetFieldMap: MemberMap},
	{Name: "ListOffice", LocalField: "ListOfficeKey", TargetTable: "OFFICE", TargetColumn: "OFFICEKEY", TargetFieldMap: OfficeMap},
}
