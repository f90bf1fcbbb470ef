package types

// AppName is the application name used for CLI metadata and log fields
const AppName = "omfetch"

// Version is the application version
var Version = "0.1.0"
