package coc

import (
	"context"
	"fmt"
)

// CurrentWarOf fetches and classifies the clan's current war
func (c *Client) CurrentWarOf(ctx context.Context, clanTag string) (CurrentWar, Outcome, error) {
	var out CurrentWar
	path := fmt.Sprintf("/clans/%s/currentwar", EncodeTag(clanTag))
	oc, err := c.getJSON(ctx, path, &out)
	if oc != OutcomeOK {
		return CurrentWar{}, oc, err
	}
	return out, OutcomeOK, nil
}

// ClanOf fetches and classifies the clan profile
func (c *Client) ClanOf(ctx context.Context, clanTag string) (Clan, Outcome, error) {
	var out Clan
	path := fmt.Sprintf("/clans/%s", EncodeTag(clanTag))
	oc, err := c.getJSON(ctx, path, &out)
	if oc != OutcomeOK {
		return Clan{}, oc, err
	}
	return out, OutcomeOK, nil
}

// RaidSeasonsOf fetches and classifies the capital raid seasons, most recent
// first. limit bounds the page size; the detector only needs the newest entry
func (c *Client) RaidSeasonsOf(ctx context.Context, clanTag string, limit int) (RaidSeasonList, Outcome, error) {
	var out RaidSeasonList
	if limit <= 0 {
		limit = 1
	}
	path := fmt.Sprintf("/clans/%s/capitalraidseasons?limit=%d", EncodeTag(clanTag), limit)
	oc, err := c.getJSON(ctx, path, &out)
	if oc != OutcomeOK {
		return RaidSeasonList{}, oc, err
	}
	return out, OutcomeOK, nil
}
