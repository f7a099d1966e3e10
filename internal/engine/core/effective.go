package core

// Effective stats are derived from a unit's kind and its online status.
// Attack and Range collapse to 0 when offline for every kind. Defense and
// Movement single out Relay kinds, which keep their base Defense and
// Movement even when cut off.

// EffectiveAttack is the attack power a unit contributes; 0 when offline.
func EffectiveAttack(u Unit, online bool) int {
	if !online {
		return 0
	}
	return BaseStats(u.Kind).Attack
}

// EffectiveDefenseAsTarget is a unit's own defense when it is the direct
// target of an attack. Offline Relays still defend at their base value (1);
// every other offline kind defends at 0.
func EffectiveDefenseAsTarget(u Unit, online bool) int {
	if online {
		return BaseStats(u.Kind).Defense
	}
	if u.Kind.IsRelay() {
		return BaseStats(u.Kind).Defense
	}
	return 0
}

// EffectiveDefenseAsSupporter is a unit's contribution to a target's
// defense line. Identical to EffectiveDefenseAsTarget in magnitude; the
// difference between target and supporter is entirely in whether terrain
// bonus applies, which the combat package handles separately.
func EffectiveDefenseAsSupporter(u Unit, online bool) int {
	return EffectiveDefenseAsTarget(u, online)
}

// EffectiveMove is a unit's movement radius. Offline Relays keep their base
// movement; every other offline kind cannot move.
func EffectiveMove(u Unit, online bool) int {
	if online {
		return BaseStats(u.Kind).Move
	}
	if u.Kind.IsRelay() {
		return BaseStats(u.Kind).Move
	}
	return 0
}

// EffectiveRange is a unit's attack range; 0 when offline.
func EffectiveRange(u Unit, online bool) int {
	if !online {
		return 0
	}
	return BaseStats(u.Kind).Range
}
