package pose

// Preset skeletons for the mandatory bodybuilding poses. They share a common
// torso (shoulders 0.2 apart at y=0.3, hips 0.15 apart at y=0.6) and differ
// only in arm placement, so each one triggers exactly one classifier branch.

func baseSkeleton() Skeleton {
	var s Skeleton
	set := func(name JointName, x, y float64) {
		s[name] = Joint{X: x, Y: y, Visibility: 0.98}
	}

	set(Nose, 0.50, 0.10)
	set(LeftShoulder, 0.60, 0.30)
	set(RightShoulder, 0.40, 0.30)
	set(LeftHip, 0.575, 0.60)
	set(RightHip, 0.425, 0.60)
	set(LeftKnee, 0.58, 0.80)
	set(RightKnee, 0.42, 0.80)
	set(LeftAnkle, 0.58, 0.98)
	set(RightAnkle, 0.42, 0.98)

	// Relaxed arms hanging by the sides.
	set(LeftElbow, 0.64, 0.45)
	set(RightElbow, 0.36, 0.45)
	set(LeftWrist, 0.65, 0.75)
	set(RightWrist, 0.35, 0.75)

	return s
}

func withArms(lElbow, rElbow, lWrist, rWrist [2]float64) Skeleton {
	s := baseSkeleton()
	s[LeftElbow] = Joint{X: lElbow[0], Y: lElbow[1], Visibility: 0.95}
	s[RightElbow] = Joint{X: rElbow[0], Y: rElbow[1], Visibility: 0.95}
	s[LeftWrist] = Joint{X: lWrist[0], Y: lWrist[1], Visibility: 0.93}
	s[RightWrist] = Joint{X: rWrist[0], Y: rWrist[1], Visibility: 0.93}
	return s
}

// BackDoubleBicepsSkeleton has both wrists overhead and spread wide.
func BackDoubleBicepsSkeleton() Skeleton {
	return withArms([2]float64{0.75, 0.30}, [2]float64{0.25, 0.30}, [2]float64{0.80, 0.15}, [2]float64{0.20, 0.15})
}

// FrontDoubleBicepsSkeleton has both wrists overhead, close to shoulder width.
func FrontDoubleBicepsSkeleton() Skeleton {
	return withArms([2]float64{0.70, 0.30}, [2]float64{0.30, 0.30}, [2]float64{0.65, 0.15}, [2]float64{0.35, 0.15})
}

// FrontLatSpreadSkeleton has wide wrists resting at hip height.
func FrontLatSpreadSkeleton() Skeleton {
	return withArms([2]float64{0.75, 0.45}, [2]float64{0.25, 0.45}, [2]float64{0.80, 0.55}, [2]float64{0.20, 0.55})
}

// BackLatSpreadSkeleton has wide wrists held above the hips.
func BackLatSpreadSkeleton() Skeleton {
	return withArms([2]float64{0.75, 0.40}, [2]float64{0.25, 0.40}, [2]float64{0.80, 0.35}, [2]float64{0.20, 0.35})
}

// SideTricepsSkeleton has the left wrist crossed in front of the right shoulder line.
func SideTricepsSkeleton() Skeleton {
	return withArms([2]float64{0.55, 0.45}, [2]float64{0.36, 0.45}, [2]float64{0.42, 0.55}, [2]float64{0.38, 0.62})
}

// SideChestSkeleton has only the left wrist above shoulder level.
func SideChestSkeleton() Skeleton {
	return withArms([2]float64{0.66, 0.38}, [2]float64{0.38, 0.40}, [2]float64{0.58, 0.27}, [2]float64{0.42, 0.45})
}

// MostMuscularSkeleton has both wrists together in front of the torso.
func MostMuscularSkeleton() Skeleton {
	return withArms([2]float64{0.64, 0.40}, [2]float64{0.36, 0.40}, [2]float64{0.53, 0.50}, [2]float64{0.47, 0.50})
}

// AbsAndThighsSkeleton has both wrists low and close to the body line.
func AbsAndThighsSkeleton() Skeleton {
	return withArms([2]float64{0.62, 0.45}, [2]float64{0.38, 0.45}, [2]float64{0.58, 0.70}, [2]float64{0.42, 0.70})
}

// RelaxedSkeleton matches none of the mandatory poses.
func RelaxedSkeleton() Skeleton {
	return baseSkeleton()
}
