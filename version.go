package rngquery

// Version is reported by the CLI banner and `rq -version`.
const Version = "0.4.0"
