/*
go-kftrack estimates the position of a noisily observed point moving in a
2D viewport using a discrete time linear Kalman filter.

A Loop is ticked at a fixed rate by a Scheduler.  On each tick it samples a
PositionSource, adds simulated sensor noise, runs the filter prediction and
then either corrects it with a real measurement or, when the simulated
sensor has no sample due for the tick, applies the configured fallback.
The truth, measured and filtered positions are kept in bounded trails for
rendering.

Reconfiguration is done by sending Commands to the Scheduler which applies
them between ticks.  Changing the motion model or either noise variance
resets the filter.

See the tracker package for the filter itself and the example
subdirectory for a browser stream and desktop window demo.
*/
package kftrack
