// Package force is a small velocity-Verlet force simulation in the style of
// d3-force.
//
// A [Simulation] owns a slice of [Body] values and a set of [Force]
// implementations. Each [Simulation.Tick] decays the energy parameter alpha
// toward its target, lets every force adjust body velocities, damps the
// velocities and integrates positions. Pinned bodies are held at their pin.
//
// Two forces are provided: [Link], a spring between pairs of bodies with a
// per-link rest distance, and [ManyBody], pairwise repulsion (or attraction
// for positive strengths).
//
// The simulation never schedules itself. Hosts call Tick once per frame and
// stop when [Simulation.Done] reports that alpha fell below alphaMin. A tick
// that leaves any body with a non-finite position or velocity fails with a
// SIMULATION_DIVERGED error.
package force
