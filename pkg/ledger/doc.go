// Package ledger records which posts have already been downloaded so that
// re-runs only fetch what is new.
//
// The ledger file is a JSON object:
//
//	{
//	  "downloaded": ["3141592653", "2718281828"],
//	  "last_updated": "2024-05-01T12:00:00Z"
//	}
//
// MarkDownloaded only changes memory; nothing is durable until Save. A missing
// or unreadable file loads as an empty ledger, which at worst causes posts to
// be downloaded again. Save replaces the file atomically. Two processes
// sharing one ledger file is not supported.
package ledger
