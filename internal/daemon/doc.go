// Package daemon holds the pieces of linereaderd that sit between the
// GTK main loop and the outside world: the config file watcher, desktop
// notifications and the bridge that runs D-Bus calls on the loop.
package daemon
