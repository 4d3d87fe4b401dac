package git

// DiffText returns the unified diff of all uncommitted changes, staged
// and unstaged, against HEAD. An empty string means a clean tree and
// leaves diff mode off; it is never an error.
func (c *Client) DiffText() (string, error) {
	if c.repo == nil {
		return "", ErrNotRepository
	}

	if c.hasHead() {
		return c.runGit("diff", "HEAD")
	}

	// A repository without commits has nothing to diff HEAD against;
	// fall back to the index so fresh repos still produce context.
	return c.runGit("diff")
}
