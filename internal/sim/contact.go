package sim

// onEnemyContact applies variant e's contact effect to client c. Called
// once per player per tick, for the first non-harmless enemy found
// overlapping that player's circle (checking stops after the first
// hit, per the simulation loop's step 5).
func (s *Simulation) onEnemyContact(e *Enemy, c *Client) {
	switch e.Variant {
	case Normal, Wall, Slowing, Dasher, SniperBullet:
		s.downClient(c)
		if e.Variant == SniperBullet {
			e.MakeHarmless(0.1)
		}

	case CursedVariant:
		s.curseClient(c)
		e.MakeHarmless(1.5)

	case Immune:
		s.downClient(c)

	case Expander:
		c.ExpanderHits++
		if c.ExpanderHits < 5 {
			c.Radius += 5
			e.MakeHarmless(1.5)
		} else {
			c.ExpanderHits = 0
			s.downClient(c)
		}

	case Silence:
		s.downClient(c)

	case Sniper:
		// Sniper contact downs the player, the same as Normal.
		s.downClient(c)
	}
}
