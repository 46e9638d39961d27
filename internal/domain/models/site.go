package models

// DefaultSiteName is shown in the page header and title.
const DefaultSiteName = "StudySphere"
