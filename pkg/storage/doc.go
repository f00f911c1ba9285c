// Package storage writes export files into the output directory.
//
// Writes go through a temporary file in the same directory followed by a
// rename, so a reader never sees a half-written export. Unless the manager
// was created with overwrite enabled, an existing file is kept and the new
// one gets a numeric suffix: slack_emojis.json, slack_emojis_1.json, ...
//
//	manager, err := storage.NewManager("./exports", false)
//	path, err := manager.Save(bytes.NewReader(data), "slack_emojis.json")
package storage
