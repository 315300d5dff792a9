package parser

// commandVerbs is the whitelist of command words that raise extraction
// confidence. Extending the set is a table edit.
var commandVerbs = map[string]struct{}{
	"ls": {}, "cd": {}, "pwd": {}, "cat": {}, "grep": {}, "find": {},
	"sed": {}, "awk": {}, "git": {}, "docker": {}, "kubectl": {},
	"npm": {}, "pip": {}, "python": {}, "python3": {}, "go": {},
	"echo": {}, "mkdir": {}, "rm": {}, "mv": {}, "cp": {}, "chmod": {},
	"chown": {}, "sudo": {}, "apt": {}, "apt-get": {}, "yum": {},
	"dnf": {}, "brew": {}, "curl": {}, "wget": {}, "ssh": {}, "scp": {},
	"ps": {}, "kill": {}, "top": {}, "df": {}, "du": {}, "tar": {},
	"gzip": {}, "head": {}, "tail": {}, "touch": {}, "ln": {},
	"systemctl": {}, "journalctl": {}, "make": {}, "which": {},
	"uname": {}, "mount": {}, "umount": {}, "rsync": {},
}

func isKnownVerb(word string) bool {
	_, ok := commandVerbs[word]
	return ok
}
