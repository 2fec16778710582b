// Package domain models the UCI "Bike Sharing" hourly rental dataset.
//
// # Data Source
//
// Records come from the public hour.csv file published with the Capital
// Bikeshare study (Fanaee-T and Gama, 2013). One row is one hour of rental
// activity in Washington, D.C. between 2011-01-01 and 2012-12-31.
//
// # Column Conventions
//
//	instant     row index (1-based, informational only)
//	dteday      calendar date, "2006-01-02"
//	season      1..4 → Spring, Summer, Fall, Winter
//	yr          0..1 → 2011, 2012
//	mnth        1..12
//	hr          0..23
//	weathersit  1..4 → Clear, Cloudy, LightRain, HeavyRain
//	temp, hum   normalized floats, range not validated
//	cnt         total rentals in the hour (casual + registered)
//
// Every coded column maps to a closed enumeration. A code outside its domain
// is a data-quality fault reported as [UnmappedCodeError]; it is never passed
// through as an unlabelled value.
//
// # Time of Day
//
// The hour is bucketed into four half-open ranges:
//
//	[6,12)  Morning
//	[12,16) Midday
//	[16,20) Evening
//	else    Night
//
// See [TimeOfDayForHour].
package domain
