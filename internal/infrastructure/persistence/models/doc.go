// Package models contains the GORM row types of the agency database.
// Entity tables share RecordModel; settings and the activity log have their
// own column layout.
package models
