// Package timezone pins every calendar computation to the clinic's configured location.
//
// Appointment dates are plain calendar days (YYYY-MM-DD) and the weekday used to pick
// a doctor's schedule entry is derived from them in this location, never in UTC.
// Configure the location with APP_TIMEZONE using IANA names such as "Asia/Jakarta" or "UTC".
//
//	day, err := timezone.ParseDate("2030-01-07") // midnight in the app location
//	day.Weekday()                                // time.Monday
//	timezone.Format(timezone.Now(), "15:04")
package timezone
